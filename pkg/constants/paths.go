package constants

// HTTP paths shared between router, application logging and tests.
const (
	PathHealth   = "/health"
	PathReady    = "/ready"
	PathWSStream = "/ws/stream"
)
