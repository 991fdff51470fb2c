package handlers

// AppHandlers groups the HTTP handlers for route registration.
type AppHandlers struct {
	ExchangeHandler *ExchangeHandler
	ReviewHandler   *ReviewHandler
}
