package api

import (
	"net/http"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// OrderHandler walks a draft order through seat selection, passenger
// details and payment.
type OrderHandler struct {
	service booking.BookingUseCase
}

type startOrderRequest struct {
	FlightNumber int       `json:"flight_number"`
	Seats        []seatDTO `json:"seats" binding:"required,min=1,dive"`
}

type checkoutRequest struct {
	HolderName string `json:"holder_name"`
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

func NewOrderHandler(service booking.BookingUseCase) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) Register(router *gin.RouterGroup) {
	router.POST("/orders", h.start)
	router.GET("/orders/:id", h.get)
	router.PUT("/orders/:id/customer", h.attachCustomer)
	router.POST("/orders/:id/checkout", h.checkout)
}

func (h *OrderHandler) start(c *gin.Context) {
	var req startOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	seats, err := positions(req.Seats)
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := h.service.StartOrder(c.Request.Context(), req.FlightNumber, seats)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) get(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) attachCustomer(c *gin.Context) {
	var req customerDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	order, err := h.service.AttachCustomer(c.Request.Context(), c.Param("id"), domain.Customer{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phones:    req.Phones,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.service.Checkout(c.Request.Context(), c.Param("id"), domain.PaymentCard{
		HolderName: req.HolderName,
		Number:     req.CardNumber,
		Expiry:     req.Expiry,
		CVV:        req.CVV,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReservationResponse(res))
}
