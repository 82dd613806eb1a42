package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/service/fleet"
	"github.com/Domenick1991/airline/internal/service/flights"
	"github.com/Domenick1991/airline/internal/service/reports"
	"github.com/gin-gonic/gin"
)

// ManagerHandler serves the back office. Routes are registered behind
// middleware.Require(domain.SessionManager).
type ManagerHandler struct {
	flights flights.FlightUseCase
	fleet   fleet.FleetUseCase
	reports reports.ReportUseCase
}

type planRequest struct {
	Origin        string `json:"origin" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	DepartureTime string `json:"departure_time" binding:"required"`
	Size          string `json:"size" binding:"required"`
}

type createFlightRequest struct {
	FlightNumber       *int    `json:"flight_number"`
	AircraftID         int64   `json:"aircraft_id" binding:"required"`
	Origin             string  `json:"origin" binding:"required"`
	Destination        string  `json:"destination" binding:"required"`
	DepartureTime      string  `json:"departure_time" binding:"required"`
	PilotIDs           []int64 `json:"pilot_ids"`
	AttendantIDs       []int64 `json:"attendant_ids"`
	EconomyPriceCents  *int64  `json:"economy_price_cents"`
	BusinessPriceCents *int64  `json:"business_price_cents"`
}

type gridDTO struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

type purchaseAircraftRequest struct {
	Manufacturer string   `json:"manufacturer" binding:"required"`
	Size         string   `json:"size" binding:"required"`
	Economy      gridDTO  `json:"economy"`
	Business     *gridDTO `json:"business"`
	PurchaseDate string   `json:"purchase_date"`
}

type hireCrewRequest struct {
	ID                  int64  `json:"id" binding:"required"`
	Role                string `json:"role" binding:"required"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	City                string `json:"city"`
	Street              string `json:"street"`
	HouseNumber         int    `json:"house_number"`
	PhoneNumber         string `json:"phone_number"`
	EmploymentStart     string `json:"employment_start"`
	LongFlightCertified bool   `json:"long_flight_certified"`
}

type crewResponse struct {
	ID                  int64  `json:"id"`
	Role                string `json:"role"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	LongFlightCertified bool   `json:"long_flight_certified"`
}

type aircraftResponse struct {
	AircraftID   int64     `json:"aircraft_id"`
	Size         string    `json:"size"`
	Manufacturer string    `json:"manufacturer"`
	PurchaseDate string    `json:"purchase_date"`
	Classes      []gridRow `json:"classes,omitempty"`
	TotalSeats   int       `json:"total_seats,omitempty"`
}

type gridRow struct {
	Class   string `json:"class"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

func NewManagerHandler(flights flights.FlightUseCase, fleet fleet.FleetUseCase, reports reports.ReportUseCase) *ManagerHandler {
	return &ManagerHandler{flights: flights, fleet: fleet, reports: reports}
}

func (h *ManagerHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights", h.overview)
	router.POST("/flights/plan", h.plan)
	router.POST("/flights", h.createFlight)
	router.POST("/flights/:number/cancel", h.cancelFlight)
	router.POST("/aircraft", h.purchaseAircraft)
	router.GET("/aircraft/:id", h.getAircraft)
	router.POST("/crew", h.hireCrew)
	router.GET("/reports", h.reportCatalog)
	router.GET("/reports/:id", h.report)
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04", raw)
}

func (h *ManagerHandler) overview(c *gin.Context) {
	result, err := h.flights.Overview(c.Request.Context(), flights.OverviewFilter(c.Query("filter")))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]overviewResponse, 0, len(result))
	for _, o := range result {
		resp = append(resp, overviewResponse{
			flightResponse:   toFlightResponse(o.Flight),
			TotalSeats:       o.TotalSeats,
			TakenSeats:       o.TakenSeats,
			HoursToDeparture: o.HoursToDeparture,
			IsPast:           o.IsPast,
			IsFull:           o.IsFull,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ManagerHandler) plan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	departure, err := parseTime(req.DepartureTime)
	if err != nil {
		badRequest(c, "departure_time must be RFC 3339")
		return
	}

	plan, err := h.flights.Plan(c.Request.Context(), flights.PlanInput{
		Origin:      strings.ToUpper(req.Origin),
		Destination: strings.ToUpper(req.Destination),
		Departure:   departure,
		Size:        domain.AircraftSize(strings.ToUpper(req.Size)),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	aircraft := make([]aircraftResponse, 0, len(plan.Aircraft))
	for _, a := range plan.Aircraft {
		aircraft = append(aircraft, toAircraftResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{
		"flight_number":       plan.FlightNumber,
		"origin":              plan.Route.Origin,
		"destination":         plan.Route.Destination,
		"departure_time":      plan.Departure.Format(time.RFC3339),
		"arrival_time":        plan.Arrival.Format(time.RFC3339),
		"long_flight":         plan.LongFlight,
		"required_pilots":     plan.Required.Pilots,
		"required_attendants": plan.Required.Attendants,
		"aircraft":            aircraft,
		"pilots":              toCrewResponses(plan.Pilots),
		"attendants":          toCrewResponses(plan.Attendants),
	})
}

func (h *ManagerHandler) createFlight(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	departure, err := parseTime(req.DepartureTime)
	if err != nil {
		badRequest(c, "departure_time must be RFC 3339")
		return
	}

	result, err := h.flights.Create(c.Request.Context(), flights.CreateFlightInput{
		Number:        req.FlightNumber,
		AircraftID:    req.AircraftID,
		Origin:        strings.ToUpper(req.Origin),
		Destination:   strings.ToUpper(req.Destination),
		Departure:     departure,
		PilotIDs:      req.PilotIDs,
		AttendantIDs:  req.AttendantIDs,
		EconomyPrice:  req.EconomyPriceCents,
		BusinessPrice: req.BusinessPriceCents,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"flight":        toFlightResponse(result.Flight),
		"seats_created": result.SeatsCreated,
	})
}

func (h *ManagerHandler) cancelFlight(c *gin.Context) {
	number, ok := paramInt(c, "number")
	if !ok {
		return
	}

	result, err := h.flights.Cancel(c.Request.Context(), number)
	if err != nil {
		if flights.IsCancelRefusal(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "reason": string(result.Reason)})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"flight_number":        result.FlightNumber,
		"reservations_updated": result.ReservationsUpdated,
	})
}

func (h *ManagerHandler) purchaseAircraft(c *gin.Context) {
	var req purchaseAircraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	input := fleet.PurchaseInput{
		Manufacturer: req.Manufacturer,
		Size:         req.Size,
		Economy:      fleet.Grid{Rows: req.Economy.Rows, Columns: req.Economy.Columns},
	}
	if req.Business != nil {
		input.Business = &fleet.Grid{Rows: req.Business.Rows, Columns: req.Business.Columns}
	}
	if req.PurchaseDate != "" {
		date, err := time.Parse(time.DateOnly, req.PurchaseDate)
		if err != nil {
			badRequest(c, "purchase_date must be YYYY-MM-DD")
			return
		}
		input.PurchaseDate = date
	}

	details, err := h.fleet.PurchaseAircraft(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAircraftDetails(details))
}

func (h *ManagerHandler) getAircraft(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid id")
		return
	}
	details, err := h.fleet.GetAircraft(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAircraftDetails(details))
}

func (h *ManagerHandler) hireCrew(c *gin.Context) {
	var req hireCrewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	member := domain.CrewMember{
		ID:                  req.ID,
		Role:                domain.CrewRole(strings.ToUpper(req.Role)),
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		City:                req.City,
		Street:              req.Street,
		HouseNumber:         req.HouseNumber,
		PhoneNumber:         req.PhoneNumber,
		LongFlightCertified: req.LongFlightCertified,
	}
	if req.EmploymentStart != "" {
		start, err := time.Parse(time.DateOnly, req.EmploymentStart)
		if err != nil {
			badRequest(c, "employment_start must be YYYY-MM-DD")
			return
		}
		member.EmploymentStart = start
	}

	hired, err := h.fleet.HireCrew(c.Request.Context(), member)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCrewResponses([]domain.CrewMember{*hired})[0])
}

func (h *ManagerHandler) reportCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.reports.Catalog())
}

func (h *ManagerHandler) report(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	table, err := h.reports.Build(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func toAircraftResponse(a domain.Aircraft) aircraftResponse {
	return aircraftResponse{
		AircraftID:   a.ID,
		Size:         string(a.Size),
		Manufacturer: a.Manufacturer,
		PurchaseDate: a.PurchaseDate.Format(time.DateOnly),
	}
}

func toAircraftDetails(d *fleet.AircraftDetails) aircraftResponse {
	resp := toAircraftResponse(d.Aircraft)
	resp.TotalSeats = d.TotalSeats
	for _, cl := range d.Classes {
		resp.Classes = append(resp.Classes, gridRow{Class: string(cl.Type), Rows: cl.Rows, Columns: cl.Columns})
	}
	return resp
}

func toCrewResponses(members []domain.CrewMember) []crewResponse {
	out := make([]crewResponse, 0, len(members))
	for _, m := range members {
		out = append(out, crewResponse{
			ID:                  m.ID,
			Role:                string(m.Role),
			FirstName:           m.FirstName,
			LastName:            m.LastName,
			LongFlightCertified: m.LongFlightCertified,
		})
	}
	return out
}
