package orchestrators

import "errors"

// Shared errors returned by orchestrators. Handlers map these to HTTP
// status codes.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not authorized for this series")
	ErrNotFound        = errors.New("not found")
	ErrSeriesClosed    = errors.New("sessions can only be created for an active series")
)
