package devserver

// Route path constants, matching the production journal API
const (
	// Auth Routes
	RouteToken         = "/users/api/token/"
	RouteTokenRefresh  = "/users/api/token/refresh/"
	RouteSignup        = "/users/signup/"
	RouteResetPassword = "/users/reset-password/"
	RouteProfile       = "/users/profile/me"

	// Journal Routes
	RouteEntries         = "/journal/entries/"
	RouteEntry           = "/journal/entries/{id}/"
	RouteEntriesCategory = "/journal/entries/category/{id}/"
	RouteCategories      = "/journal/categories/"
)
