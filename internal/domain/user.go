package domain

// AuthUser mirrors the identity provider's notion of the signed-in user.
// A nil AuthUser means unauthenticated.
type AuthUser struct {
	ID    string
	Email string
}

// AuthEvent is a logical authentication-state transition re-published to
// the rest of the application.
type AuthEvent int

const (
	AuthEventSignedIn AuthEvent = iota
	AuthEventSignedOut
)

// String returns a human-readable event name.
func (e AuthEvent) String() string {
	switch e {
	case AuthEventSignedIn:
		return "signed_in"
	case AuthEventSignedOut:
		return "signed_out"
	}
	return "unknown"
}
