package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/domain"
	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Login  *service.LoginService
	Tokens TokenVerifier
}

type api struct {
	logger   *slog.Logger
	isProd   bool
	dbPing   func(context.Context) error
	loginSvc *service.LoginService
	tokens   TokenVerifier
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:   logger,
		isProd:   opts.IsProd,
		dbPing:   opts.DBPing,
		loginSvc: opts.Login,
		tokens:   opts.Tokens,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", api.handleHealthz)
	mux.HandleFunc("POST /api/auth/login", api.handleAuthLogin)
	mux.HandleFunc("GET /api/auth/attempts", api.requireRole(api.handleLoginAttempts, domain.RoleAdmin, domain.RoleRoot))

	var h http.Handler = mux
	h = RequestLogger(logger)(h)
	h = Recoverer(logger, opts.IsProd)(h)
	h = RequestID()(h)
	return h
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
