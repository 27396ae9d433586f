package audit

import "time"

// Actions recorded by the identity service.
const (
	ActionIdentityRegistered = "identity_registered"
	ActionIdentityVerified   = "identity_verified"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. Subject is a truncated
// lookup-key prefix, never a raw identifier or attribute value.
type Event struct {
	Timestamp time.Time
	Action    string
	Subject   string
	RequestID string
	Detail    string
}
