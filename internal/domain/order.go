package domain

import "time"

// DraftOrder holds a seat selection between review and payment.
type DraftOrder struct {
	ID           string
	FlightNumber int
	Seats        []SeatInFlight
	TotalCents   int64
	Customer     *Customer
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

func (o *DraftOrder) Positions() []SeatPosition {
	positions := make([]SeatPosition, 0, len(o.Seats))
	for _, s := range o.Seats {
		positions = append(positions, s.SeatPosition)
	}
	return positions
}

type PaymentCard struct {
	HolderName string
	Number     string
	Expiry     string
	CVV        string
}
