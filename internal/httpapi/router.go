package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/oggyb/trio-connect/internal/app"
	svcErr "github.com/oggyb/trio-connect/internal/errors"
)

// Handlers serves the HTTP side of the engine: payment provider callbacks,
// the admin surface and a health probe.
type Handlers struct {
	core       *app.Core
	log        *slog.Logger
	adminToken string
}

func NewHandlers(appCtx *app.AppContext, core *app.Core) *Handlers {
	return &Handlers{
		core:       core,
		log:        appCtx.Logger.With("component", "http"),
		adminToken: appCtx.Config.HTTP.AdminToken,
	}
}

// NewRouter builds the chi router with CORS for the comma separated origins.
func NewRouter(appCtx *app.AppContext, core *app.Core) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: splitOrigins(appCtx.Config.HTTP.CORSOrigin),
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	NewHandlers(appCtx, core).SetupRoutes(r)
	return r
}

func (h *Handlers) SetupRoutes(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/precheckout", h.preCheckout)
		r.Post("/confirm", h.confirm)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/stats", h.stats)
		r.Get("/reports", h.pendingReports)
		r.Post("/reports/{reportID}/review", h.reviewReport)
		r.Get("/users/{ident}", h.findUser)
		r.Delete("/users/{ident}", h.deleteUser)
		r.Get("/audience/{audience}", h.audience)
		r.Post("/broadcast", h.broadcast)
	})
}

// requireAdmin checks the bearer token against ADMIN_TOKEN. With no token
// configured the admin surface is closed.
func (h *Handlers) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if h.adminToken == "" || !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "admin capability required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := svcErr.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func splitOrigins(s string) []string {
	var origins []string
	for _, p := range strings.Split(s, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
