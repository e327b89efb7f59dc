package handler

// Route pattern constants for chi router registration. The .html paths
// are kept as-is so links published in past newsletters keep working.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteEventList is the public event listing page.
	RouteEventList = "/Eventlist.html"
	// RouteEventDetail is the event detail page.
	RouteEventDetail = "/events/{id}"
	// RouteEventRegister is the event registration form and submission.
	RouteEventRegister = "/events/{id}/register"
	// RouteEventRegisterConfirm shows the confirmation after a registration.
	RouteEventRegisterConfirm = "/events/{id}/register/confirm"
	// RouteLogin is the login page and form submission.
	RouteLogin = "/Login.html"
	// RouteLogout logs the current user out.
	RouteLogout = "/logout"
	// RouteRegister is the public member signup.
	RouteRegister = "/register"
	// RouteAdminSignup is the invite-gated staff/admin signup.
	RouteAdminSignup = "/admin/signup"
	// RouteCreate is the staff-only event creation page.
	RouteCreate = "/Create.html"
	// RouteStaff is the staff landing page.
	RouteStaff = "/RGSQStaff.html"
	// RouteAdminEvents is the staff event management listing.
	RouteAdminEvents = "/admin/events"
	// RouteAdminEventDelete deletes an event.
	RouteAdminEventDelete = "/admin/events/{id}/delete"
	// RouteAbout is the society background page.
	RouteAbout = "/about"
	// RouteContact is the contact page.
	RouteContact = "/contact"
	// RouteMembership describes membership tiers.
	RouteMembership = "/membership"
	// RouteLibrary is the society library page.
	RouteLibrary = "/library"
	// RouteVenueHire is the venue hire page.
	RouteVenueHire = "/venue-hire"
	// RouteBulletin is the bulletin page.
	RouteBulletin = "/bulletin"
	// RouteNews is the society news page.
	RouteNews = "/news"
	// RouteAdmin is the staff dashboard alias.
	RouteAdmin = "/admin"
	// RouteHealth is the liveness endpoint.
	RouteHealth = "/health"
	// RouteUploads serves stored event images.
	RouteUploads = "/uploads"
)
