package domain

import (
	"fmt"
	"strings"
	"time"
)

type AircraftSize string

const (
	AircraftSizeSmall AircraftSize = "SMALL"
	AircraftSizeLarge AircraftSize = "LARGE"
)

func ParseAircraftSize(s string) (AircraftSize, error) {
	switch size := AircraftSize(strings.ToUpper(strings.TrimSpace(s))); size {
	case AircraftSizeSmall, AircraftSizeLarge:
		return size, nil
	default:
		return "", fmt.Errorf("%w: unknown aircraft size %q", ErrValidation, s)
	}
}

type ClassType string

const (
	ClassEconomy  ClassType = "ECONOMY"
	ClassBusiness ClassType = "BUSINESS"
)

func ParseClassType(s string) (ClassType, error) {
	switch class := ClassType(strings.ToUpper(strings.TrimSpace(s))); class {
	case ClassEconomy, ClassBusiness:
		return class, nil
	default:
		return "", fmt.Errorf("%w: unknown class %q", ErrValidation, s)
	}
}

var Manufacturers = []string{"BOEING", "AIRBUS", "DASSAULT"}

type Aircraft struct {
	ID           int64
	Size         AircraftSize
	Manufacturer string
	PurchaseDate time.Time
}

// CabinClass is the row/column grid of one fare class on an aircraft.
type CabinClass struct {
	AircraftID int64
	Type       ClassType
	Rows       int
	Columns    int
}

// Seats expands the grid into the seat layout, rows and columns starting at 1.
func (c CabinClass) Seats() []SeatPosition {
	seats := make([]SeatPosition, 0, c.Rows*c.Columns)
	for row := 1; row <= c.Rows; row++ {
		for col := 1; col <= c.Columns; col++ {
			seats = append(seats, SeatPosition{Class: c.Type, Row: row, Column: col})
		}
	}
	return seats
}

type SeatPosition struct {
	Class  ClassType
	Row    int
	Column int
}

func (p SeatPosition) String() string {
	return fmt.Sprintf("%s %d-%d", p.Class, p.Row, p.Column)
}
