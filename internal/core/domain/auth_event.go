package domain

import "time"

// AuthEventKind classifies an audit record.
type AuthEventKind string

const (
	EventSignUp       AuthEventKind = "signup"
	EventSignIn       AuthEventKind = "signin"
	EventSignInFailed AuthEventKind = "signin_failed"
	EventAccessDenied AuthEventKind = "access_denied"
)

// AuthEvent is an audit record of an authentication or authorization outcome.
type AuthEvent struct {
	Kind       AuthEventKind
	Username   string
	Reason     string // optional
	RouteID    string // optional
	OccurredAt time.Time
}
