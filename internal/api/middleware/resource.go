package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coachhub/coachapi/internal/api/respond"
	"github.com/coachhub/coachapi/internal/domain"
)

// ResourceFinder resolves a resource by ID.
type ResourceFinder interface {
	Get(ctx context.Context, id string) (*domain.Resource, error)
}

// LoadResource resolves the {id} route parameter and attaches the resource
// to the request context for RequireAccessReason and the handlers.
func LoadResource(finder ResourceFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := finder.Get(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				respond.MapError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithResource(r.Context(), res)))
		})
	}
}
