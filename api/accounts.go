package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/middleware"
	"github.com/Domenick1991/airline/internal/service/accounts"
	"github.com/Domenick1991/airline/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service accounts.AccountUseCase
}

type signupRequest struct {
	Email          string   `json:"email" binding:"required"`
	Password       string   `json:"password" binding:"required"`
	FirstName      string   `json:"first_name" binding:"required"`
	LastName       string   `json:"last_name" binding:"required"`
	PassportNumber string   `json:"passport_number" binding:"required"`
	BirthDate      string   `json:"birth_date" binding:"required"`
	MainPhone      string   `json:"main_phone" binding:"required"`
	ExtraPhones    []string `json:"extra_phones"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type managerLoginRequest struct {
	ID       int64  `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(service accounts.AccountUseCase) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/auth/signup", h.signup)
	router.POST("/auth/login", h.login)
	router.POST("/auth/manager/login", h.managerLogin)
	router.POST("/auth/logout", h.logout)
}

func (h *AuthHandler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	birth, err := time.Parse(time.DateOnly, req.BirthDate)
	if err != nil {
		badRequest(c, "birth_date must be YYYY-MM-DD")
		return
	}

	session, err := h.service.Signup(c.Request.Context(), accounts.SignupInput{
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PassportNumber: req.PassportNumber,
		BirthDate:      birth,
		MainPhone:      req.MainPhone,
		ExtraPhones:    req.ExtraPhones,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionResponse(session))
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(session))
}

func (h *AuthHandler) managerLogin(c *gin.Context) {
	var req managerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.service.ManagerLogin(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(session))
}

func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MeHandler serves the logged-in customer. Routes are registered behind
// middleware.Require(domain.SessionCustomer).
type MeHandler struct {
	accounts accounts.AccountUseCase
	bookings booking.BookingUseCase
}

func NewMeHandler(accounts accounts.AccountUseCase, bookings booking.BookingUseCase) *MeHandler {
	return &MeHandler{accounts: accounts, bookings: bookings}
}

func (h *MeHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.profile)
	router.GET("/reservations", h.history)
	router.POST("/reservations/:code/cancel", h.cancel)
}

func customerEmail(c *gin.Context) (string, bool) {
	s, ok := middleware.SessionFrom(c)
	if !ok || s.Kind != domain.SessionCustomer {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return "", false
	}
	return s.Email, true
}

func (h *MeHandler) profile(c *gin.Context) {
	email, ok := customerEmail(c)
	if !ok {
		return
	}
	customer, err := h.accounts.Profile(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerDTO{
		Email:     customer.Email,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Phones:    customer.Phones,
	})
}

// history lists the customer's reservations, ?filter= one of all,
// active_future, completed, customer_cancelled, system_cancelled.
func (h *MeHandler) history(c *gin.Context) {
	email, ok := customerEmail(c)
	if !ok {
		return
	}
	views, err := h.bookings.History(c.Request.Context(), email, domain.HistoryFilter(c.Query("filter")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toViewResponses(views))
}

func (h *MeHandler) cancel(c *gin.Context) {
	email, ok := customerEmail(c)
	if !ok {
		return
	}
	code, ok := paramInt(c, "code")
	if !ok {
		return
	}

	res, err := h.bookings.CancelAsCustomer(c.Request.Context(), email, code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(res))
}
