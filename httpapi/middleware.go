package httpapi

import (
	"context"
	"net/http"
	"strings"

	"taskroom/domain"

	"github.com/julienschmidt/httprouter"
)

type principalKey struct{}

// withPrincipal resolves the Authorization header into a Principal and
// stores it on the request context. A missing or bad credential yields the
// anonymous principal; rejecting it is left to requireAuth.
func (s *Server) withPrincipal(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		principal := domain.Anonymous()
		if header := r.Header.Get("Authorization"); header != "" {
			if credential, found := strings.CutPrefix(header, "Bearer "); found {
				principal = s.resolver.Resolve(credential)
			}
		}
		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next(w, r.WithContext(ctx), ps)
	}
}

// requireAuth rejects anonymous principals with 401 before the handler runs.
func (s *Server) requireAuth(next httprouter.Handle) httprouter.Handle {
	return s.withPrincipal(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !principalFrom(r.Context()).Authenticated {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r, ps)
	})
}

func principalFrom(ctx context.Context) domain.Principal {
	if p, ok := ctx.Value(principalKey{}).(domain.Principal); ok {
		return p
	}
	return domain.Anonymous()
}
