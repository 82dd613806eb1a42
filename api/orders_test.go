package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func draftOrder() *domain.DraftOrder {
	return &domain.DraftOrder{
		ID:           "order-1",
		FlightNumber: 120,
		Seats: []domain.SeatInFlight{{
			FlightNumber: 120,
			SeatPosition: domain.SeatPosition{Class: domain.ClassEconomy, Row: 5, Column: 1},
			PriceCents:   45000,
		}},
		TotalCents: 45000,
		ExpiresAt:  time.Date(2026, 6, 1, 9, 15, 0, 0, time.UTC),
	}
}

func TestOrderHandler_start(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewOrderHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/api/orders",
		`{"flight_number":120,"seats":[{"class":"ECONOMY","row":5,"column":1}]}`)

	mockService.On("StartOrder", mock.Anything, 120, []domain.SeatPosition{
		{Class: domain.ClassEconomy, Row: 5, Column: 1},
	}).Return(draftOrder(), nil)

	handler.start(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{
		"order_id": "order-1",
		"flight_number": 120,
		"seats": [{"class":"ECONOMY","row":5,"column":1,"price_cents":45000,"taken":false}],
		"total_cents": 45000,
		"expires_at": "2026-06-01T09:15:00Z"
	}`, w.Body.String())
}

func TestOrderHandler_get_Expired(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewOrderHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/orders/order-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "order-1"}}

	mockService.On("GetOrder", mock.Anything, "order-1").Return(nil, domain.ErrDraftOrderNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_attachCustomer(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewOrderHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPut, "/api/orders/order-1/customer",
		`{"email":"dana@example.com","first_name":"Dana","last_name":"Levi","phones":["050-1234567"]}`)
	c.Params = gin.Params{{Key: "id", Value: "order-1"}}

	customer := domain.Customer{Email: "dana@example.com", FirstName: "Dana", LastName: "Levi", Phones: []string{"050-1234567"}}
	order := draftOrder()
	order.Customer = &customer
	mockService.On("AttachCustomer", mock.Anything, "order-1", customer).Return(order, nil)

	handler.attachCustomer(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"last_name":"Levi"`)
}

func TestOrderHandler_checkout(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewOrderHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/api/orders/order-1/checkout",
		`{"holder_name":"Dana Levi","card_number":"4111111111111111","expiry":"09/27","cvv":"123"}`)
	c.Params = gin.Params{{Key: "id", Value: "order-1"}}

	mockService.On("Checkout", mock.Anything, "order-1", domain.PaymentCard{
		HolderName: "Dana Levi",
		Number:     "4111111111111111",
		Expiry:     "09/27",
		CVV:        "123",
	}).Return(&domain.Reservation{Code: 2222, Status: domain.ReservationStatusActive}, nil)

	handler.checkout(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"reservation_code":2222`)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_checkout_InvalidCard(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewOrderHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/api/orders/order-1/checkout", `{"holder_name":"Dana","card_number":"1"}`)
	c.Params = gin.Params{{Key: "id", Value: "order-1"}}

	mockService.On("Checkout", mock.Anything, "order-1", mock.Anything).
		Return(nil, domain.Validationf("card number must have 12 to 19 digits"))

	handler.checkout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"validation failed: card number must have 12 to 19 digits"}`, w.Body.String())
}
