package route

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"k8s.io/klog/v2"
)

func resolveRouter(res Inspector) http.Handler {
	r := chi.NewRouter()
	r.Get("/", resolve(res))
	return r
}

// resolve answers GET /resolve?url=<destination>.
func resolve(res Inspector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("url")
		if raw == "" {
			sendError(w, r, badRequest("missing url parameter"))
			return
		}
		dst, err := url.Parse(raw)
		if err != nil || dst.Scheme == "" {
			sendError(w, r, badRequest("invalid url: "+raw))
			return
		}

		setting := res.Resolve(dst)
		klog.V(2).Infof("resolve %s -> %s", dst.Redacted(), setting)
		render.JSON(w, r, setting)
	}
}

func settings(res Inspector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, res.Inspect())
	}
}
