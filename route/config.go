package route

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"sysproxy-service/config"
)

// Changes are written to the config file and apply on restart.
func configRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/", getConfigs)
	r.Get("/{name}", getConfig)
	r.Post("/{name}", updateConfig)
	return r
}

func getConfigs(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, config.GetConfig())
}

func getConfig(w http.ResponseWriter, r *http.Request) {
	var s string
	switch chi.URLParam(r, "name") {
	case "store":
		s = config.GetStore()
	case "source":
		s = config.GetSource()
	case "unix-socket":
		s = config.GetUnixSocket()
	case "named-pipe":
		s = config.GetNamedPipe()
	case "http-listen":
		s = config.GetHttp()
	default:
		sendError(w, r, badRequest("Invalid config name"))
		return
	}

	render.JSON(w, r, s)
}

func updateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg struct {
		Value string `json:"value"`
	}
	if err := render.DecodeJSON(r.Body, &cfg); err != nil {
		sendError(w, r, badRequest(err.Error()))
		return
	}

	var err error
	switch chi.URLParam(r, "name") {
	case "store":
		err = config.SetStore(cfg.Value)
		if err != nil {
			sendError(w, r, badRequest(err.Error()))
			return
		}
	case "source":
		err = config.SetSource(strings.TrimSpace(cfg.Value))
	case "unix-socket":
		err = config.SetUnixSocket(cfg.Value)
	case "named-pipe":
		err = config.SetNamedPipe(cfg.Value)
	case "http-listen":
		err = config.SetHttp(cfg.Value)
	case "secret":
		err = config.SetSecret(cfg.Value)
	default:
		sendError(w, r, badRequest("Invalid config name"))
		return
	}
	if err != nil {
		sendError(w, r, err)
		return
	}

	render.NoContent(w, r)
}
