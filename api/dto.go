package api

import (
	"time"

	"github.com/Domenick1991/airline/internal/domain"
)

type seatDTO struct {
	Class  string `json:"class" binding:"required"`
	Row    int    `json:"row" binding:"required,min=1"`
	Column int    `json:"column" binding:"required,min=1"`
}

func (s seatDTO) position() (domain.SeatPosition, error) {
	class, err := domain.ParseClassType(s.Class)
	if err != nil {
		return domain.SeatPosition{}, err
	}
	return domain.SeatPosition{Class: class, Row: s.Row, Column: s.Column}, nil
}

func positions(seats []seatDTO) ([]domain.SeatPosition, error) {
	out := make([]domain.SeatPosition, 0, len(seats))
	for _, s := range seats {
		p, err := s.position()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func seatDTOs(seats []domain.SeatPosition) []seatDTO {
	out := make([]seatDTO, 0, len(seats))
	for _, s := range seats {
		out = append(out, seatDTO{Class: string(s.Class), Row: s.Row, Column: s.Column})
	}
	return out
}

type flightResponse struct {
	FlightNumber    int    `json:"flight_number"`
	AircraftID      int64  `json:"aircraft_id"`
	Origin          string `json:"origin"`
	Destination     string `json:"destination"`
	DepartureTime   string `json:"departure_time"`
	ArrivalTime     string `json:"arrival_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
}

func toFlightResponse(f domain.Flight) flightResponse {
	return flightResponse{
		FlightNumber:    f.Number,
		AircraftID:      f.AircraftID,
		Origin:          f.Origin,
		Destination:     f.Destination,
		DepartureTime:   f.DepartureTime.Format(time.RFC3339),
		ArrivalTime:     f.ArrivalTime.Format(time.RFC3339),
		DurationMinutes: f.DurationMinutes,
		Status:          string(f.Status),
	}
}

type overviewResponse struct {
	flightResponse
	TotalSeats       int  `json:"total_seats"`
	TakenSeats       int  `json:"taken_seats"`
	HoursToDeparture int  `json:"hours_to_departure"`
	IsPast           bool `json:"is_past"`
	IsFull           bool `json:"is_full"`
}

type seatMapSeat struct {
	seatDTO
	PriceCents int64 `json:"price_cents"`
	Taken      bool  `json:"taken"`
}

type reservationResponse struct {
	ReservationCode   int       `json:"reservation_code"`
	Email             string    `json:"email"`
	FlightNumber      int       `json:"flight_number"`
	Status            string    `json:"status"`
	TotalPaymentCents int64     `json:"total_payment_cents"`
	Seats             []seatDTO `json:"seats,omitempty"`
}

func toReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ReservationCode:   r.Code,
		Email:             r.Email,
		FlightNumber:      r.FlightNumber,
		Status:            string(r.Status),
		TotalPaymentCents: r.TotalPaymentCents,
		Seats:             seatDTOs(r.Seats),
	}
}

type reservationViewResponse struct {
	reservationResponse
	Origin               string `json:"origin"`
	Destination          string `json:"destination"`
	DepartureTime        string `json:"departure_time"`
	FlightStatus         string `json:"flight_status"`
	IsUrgent             bool   `json:"is_urgent"`
	CancellationFeeCents int64  `json:"cancellation_fee_cents"`
}

func toViewResponses(views []domain.ReservationView) []reservationViewResponse {
	out := make([]reservationViewResponse, 0, len(views))
	for i := range views {
		v := views[i]
		out = append(out, reservationViewResponse{
			reservationResponse:  toReservationResponse(&v.Reservation),
			Origin:               v.Origin,
			Destination:          v.Destination,
			DepartureTime:        v.DepartureTime.Format(time.RFC3339),
			FlightStatus:         string(v.FlightStatus),
			IsUrgent:             v.IsUrgent,
			CancellationFeeCents: v.CancellationFee,
		})
	}
	return out
}

type customerDTO struct {
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phones    []string `json:"phones"`
}

type orderResponse struct {
	OrderID      string        `json:"order_id"`
	FlightNumber int           `json:"flight_number"`
	Seats        []seatMapSeat `json:"seats"`
	TotalCents   int64         `json:"total_cents"`
	Customer     *customerDTO  `json:"customer,omitempty"`
	ExpiresAt    string        `json:"expires_at"`
}

func toOrderResponse(o *domain.DraftOrder) orderResponse {
	resp := orderResponse{
		OrderID:      o.ID,
		FlightNumber: o.FlightNumber,
		Seats:        make([]seatMapSeat, 0, len(o.Seats)),
		TotalCents:   o.TotalCents,
		ExpiresAt:    o.ExpiresAt.Format(time.RFC3339),
	}
	for _, s := range o.Seats {
		resp.Seats = append(resp.Seats, seatMapSeat{
			seatDTO:    seatDTO{Class: string(s.Class), Row: s.Row, Column: s.Column},
			PriceCents: s.PriceCents,
		})
	}
	if o.Customer != nil {
		resp.Customer = &customerDTO{
			Email:     o.Customer.Email,
			FirstName: o.Customer.FirstName,
			LastName:  o.Customer.LastName,
			Phones:    o.Customer.Phones,
		}
	}
	return resp
}

type sessionResponse struct {
	Token     string `json:"token"`
	Kind      string `json:"kind"`
	Email     string `json:"email,omitempty"`
	ManagerID int64  `json:"manager_id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ExpiresAt string `json:"expires_at"`
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		Token:     s.Token,
		Kind:      string(s.Kind),
		Email:     s.Email,
		ManagerID: s.ManagerID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		ExpiresAt: s.ExpiresAt.Format(time.RFC3339),
	}
}
