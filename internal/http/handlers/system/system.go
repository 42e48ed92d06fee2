// Package system serves the endpoints that are about the service itself
// rather than about records.
package system

import (
	"net/http"

	"github.com/aanand-mishra/records-api/internal/http/router"
	"github.com/aanand-mishra/records-api/internal/utils/response"
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to the records API!"

// indexResponse lists what the service can do.
type indexResponse struct {
	Message string         `json:"message"`
	Routes  []router.Route `json:"routes"`
}

// RouteLister is satisfied by *router.Router.
type RouteLister interface {
	Routes() []router.Route
}

// Index handles GET / with a welcome message and the route table.
func Index(routes RouteLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = response.WriteJSON(w, http.StatusOK, indexResponse{
			Message: WelcomeMessage,
			Routes:  routes.Routes(),
		})
	}
}

// Health handles GET /healthz.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = response.WriteJSON(w, http.StatusOK, response.OK())
	}
}
