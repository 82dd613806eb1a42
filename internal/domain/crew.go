package domain

import "time"

type CrewRole string

const (
	CrewRolePilot     CrewRole = "PILOT"
	CrewRoleAttendant CrewRole = "ATTENDANT"
)

type CrewMember struct {
	ID                  int64
	Role                CrewRole
	FirstName           string
	LastName            string
	City                string
	Street              string
	HouseNumber         int
	PhoneNumber         string
	EmploymentStart     time.Time
	LongFlightCertified bool
}

type Manager struct {
	ID        int64
	FirstName string
	LastName  string
}
