package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/airline/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// ReservationHandler serves guests: direct booking, lookup and cancel by code.
type ReservationHandler struct {
	service booking.BookingUseCase
}

type createReservationRequest struct {
	Email        string    `json:"email" binding:"required"`
	FlightNumber int       `json:"flight_number"`
	Seats        []seatDTO `json:"seats" binding:"required,min=1,dive"`
}

type guestCancelRequest struct {
	Email string `json:"email" binding:"required"`
}

func NewReservationHandler(service booking.BookingUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("/reservations", h.create)
	router.GET("/reservations/:code", h.lookup)
	router.POST("/reservations/:code/cancel", h.cancel)
}

func (h *ReservationHandler) create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	seats, err := positions(req.Seats)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.service.CreateReservation(c.Request.Context(), booking.CreateReservationInput{
		Email:        req.Email,
		FlightNumber: req.FlightNumber,
		Seats:        seats,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReservationResponse(res))
}

// lookup finds an active upcoming reservation by ?email= and code.
func (h *ReservationHandler) lookup(c *gin.Context) {
	code, ok := paramInt(c, "code")
	if !ok {
		return
	}
	views, err := h.service.Lookup(c.Request.Context(), c.Query("email"), code)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(views) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active reservation " + strconv.Itoa(code) + " for this email"})
		return
	}
	c.JSON(http.StatusOK, toViewResponses(views)[0])
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	code, ok := paramInt(c, "code")
	if !ok {
		return
	}
	var req guestCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	canceled, err := h.service.CancelAsGuest(c.Request.Context(), req.Email, code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"canceled": canceled})
}
