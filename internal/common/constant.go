// Package common contains shared constants and sentinel errors used across
// applylog components.
package common

const (
	// AuthorizationHeaderName is the gRPC metadata key that carries the
	// bearer access token on outbound requests.
	AuthorizationHeaderName = "authorization"

	// BearerPrefix precedes the token in the authorization value.
	BearerPrefix = "Bearer "

	// DateLayout is the wire and storage format for calendar dates.
	DateLayout = "2006-01-02"
)
