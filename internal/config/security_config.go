package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// Permissions granted to tenant staff in access token claims
const (
	PermBookingsRead   = "bookings:read"
	PermBookingsWrite  = "bookings:write"
	PermPaymentsWrite  = "payments:write"
	PermPaymentsManage = "payments:manage"
)

// EndpointSecurity is the authentication level and capability a route requires
type EndpointSecurity struct {
	Level      SecurityLevel
	Permission string
}

// EndpointSecurityConfig maps route names to their required security
var EndpointSecurityConfig = map[string]EndpointSecurity{
	"Healthz": {Level: SecurityPublic},

	// Quotes and bookings
	"CreateQuote":     {Level: SecurityAccess, Permission: PermBookingsRead},
	"CreateBooking":   {Level: SecurityAccess, Permission: PermBookingsWrite},
	"ListBookings":    {Level: SecurityAccess, Permission: PermBookingsRead},
	"GetBooking":      {Level: SecurityAccess, Permission: PermBookingsRead},
	"RequoteBooking":  {Level: SecurityAccess, Permission: PermBookingsWrite},
	"ConfirmBooking":  {Level: SecurityAccess, Permission: PermBookingsWrite},
	"CancelBooking":   {Level: SecurityAccess, Permission: PermBookingsWrite},
	"CompleteBooking": {Level: SecurityAccess, Permission: PermBookingsWrite},
	"GetLateFee":      {Level: SecurityAccess, Permission: PermBookingsRead},

	// Payments
	"GetBalance":          {Level: SecurityAccess, Permission: PermBookingsRead},
	"ListPayments":        {Level: SecurityAccess, Permission: PermBookingsRead},
	"SubmitPayment":       {Level: SecurityAccess, Permission: PermPaymentsWrite},
	"UpdatePaymentStatus": {Level: SecurityAccess, Permission: PermPaymentsManage},
}

// GetEndpointSecurity returns the security for a route; unknown routes require an access token.
func GetEndpointSecurity(route string) EndpointSecurity {
	if sec, ok := EndpointSecurityConfig[route]; ok {
		return sec
	}
	return EndpointSecurity{Level: SecurityAccess}
}
