package constants

// Static route constants
const (
	HomeRoute             = "/"
	PricingRoute          = "/pricing"
	CheckoutRoute         = "/checkout"
	CheckoutCompleteRoute = "/checkout/complete"
	ActivateRoute         = "/activate"
)
