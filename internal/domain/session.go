package domain

import "time"

type SessionKind string

const (
	SessionCustomer SessionKind = "customer"
	SessionManager  SessionKind = "manager"
)

// Session is a logged-in customer or manager, keyed by an opaque token.
type Session struct {
	Token     string      `json:"token"`
	Kind      SessionKind `json:"kind"`
	Email     string      `json:"email,omitempty"`
	ManagerID int64       `json:"manager_id,omitempty"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	ExpiresAt time.Time   `json:"expires_at"`
}
