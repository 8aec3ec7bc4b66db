package route

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"sysproxy-service/resolver"
)

// Inspector is a resolver that can also report the values it reads.
type Inspector interface {
	resolver.Resolver
	Inspect() resolver.Snapshot
}

// Router builds the API. An empty secret disables authentication.
func Router(res Inspector, secret string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Group(func(r chi.Router) {
		r.Use(auth(secret))
		r.Get("/", hello)
		r.Mount("/resolve", resolveRouter(res))
		r.Get("/settings", settings(res))
		r.Get("/status", status)
		r.Mount("/config", configRouter())
	})
	return r
}

func auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		fn := func(w http.ResponseWriter, r *http.Request) {
			bearer, token, found := strings.Cut(r.Header.Get("Authorization"), " ")

			if bearer != "Bearer" || !found || token != secret {
				sendError(w, r, ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

func hello(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, "200 ok")
}
