package config

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityService                      // Service token required (payment relay)
	SecurityAccess                       // Access token required
)

// RouteSecurityConfig maps route names to their required security level
var RouteSecurityConfig = map[string]SecurityLevel{
	// Public
	"Health": SecurityPublic,

	// Pricing - Access Protected
	"CreateQuote":    SecurityAccess,
	"ConvertCredits": SecurityAccess,

	// Bookings - Access Protected
	"CreateBooking": SecurityAccess,
	"GetBooking":    SecurityAccess,
	"ConfirmPickup": SecurityAccess,
	"ConfirmReturn": SecurityAccess,
	"CancelBooking": SecurityAccess,

	// Bookings - Service Protected
	"MarkBookingPaid": SecurityService,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := RouteSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown routes
	return SecurityAccess
}
