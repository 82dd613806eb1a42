package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights", h.search)
	router.GET("/flights/:number", h.get)
	router.GET("/flights/:number/seats", h.seatMap)
	router.GET("/routes/origins", h.origins)
	router.GET("/routes/destinations", h.destinations)
}

// search lists upcoming flights, optionally by ?date=YYYY-MM-DD&origin=&destination=.
func (h *FlightHandler) search(c *gin.Context) {
	search := domain.FlightSearch{
		Origin:      strings.ToUpper(strings.TrimSpace(c.Query("origin"))),
		Destination: strings.ToUpper(strings.TrimSpace(c.Query("destination"))),
	}
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			badRequest(c, "date must be YYYY-MM-DD")
			return
		}
		search.Date = &date
	}

	result, err := h.service.Search(c.Request.Context(), search)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]flightResponse, 0, len(result))
	for _, f := range result {
		resp = append(resp, toFlightResponse(f))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) get(c *gin.Context) {
	number, ok := paramInt(c, "number")
	if !ok {
		return
	}
	flight, err := h.service.Get(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight))
}

func (h *FlightHandler) seatMap(c *gin.Context) {
	number, ok := paramInt(c, "number")
	if !ok {
		return
	}
	seats, err := h.service.SeatMap(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]seatMapSeat, 0, len(seats))
	for _, s := range seats {
		resp = append(resp, seatMapSeat{
			seatDTO:    seatDTO{Class: string(s.Class), Row: s.Row, Column: s.Column},
			PriceCents: s.PriceCents,
			Taken:      s.Taken,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) origins(c *gin.Context) {
	origins, err := h.service.Origins(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, origins)
}

func (h *FlightHandler) destinations(c *gin.Context) {
	origin := strings.ToUpper(strings.TrimSpace(c.Query("origin")))
	destinations, err := h.service.Destinations(c.Request.Context(), origin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, destinations)
}
