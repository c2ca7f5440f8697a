package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/mpower/youthopia/internal/admin"
	"github.com/mpower/youthopia/internal/api"
	"github.com/mpower/youthopia/internal/config"
	"github.com/mpower/youthopia/internal/controller"
	"github.com/mpower/youthopia/internal/handler"
	"github.com/mpower/youthopia/internal/middleware"
	"github.com/mpower/youthopia/internal/mirror"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/spin"
	"github.com/mpower/youthopia/internal/store"
	ws "github.com/mpower/youthopia/internal/websocket"
)

type Server struct {
	cfg         *config.Config
	hub         *ws.Hub
	mirror      *mirror.Mirror
	console     *admin.Console
	poller      *mirror.Poller
	sessionH    *handler.SessionHandler
	eventH      *handler.EventHandler
	spinH       *handler.SpinHandler
	redemptionH *handler.RedemptionHandler
	adminH      *handler.AdminHandler
	statsH      *handler.StatsHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))

	staff, err := cfg.StaffAccounts()
	if err != nil {
		return nil, fmt.Errorf("load staff accounts: %w", err)
	}

	client := api.NewClient(cfg.APIConfig(), logger.With("component", "api"))
	ctlLogger := logger.With("component", "controller")
	ctl := mirror.Controllers{
		Auth:        controller.NewAuthController(client, staff, ctlLogger),
		Users:       controller.NewUserController(client, ctlLogger),
		Events:      controller.NewEventController(client, store.NewEventCacheStore(db), ctlLogger),
		Redemptions: controller.NewRedemptionController(client, ctlLogger),
		Feedback:    controller.NewFeedbackController(client, ctlLogger),
	}

	m := mirror.New(ctl, store.NewSessionStore(db), hub, mirror.Options{
		Spin:      spin.Config{AnimationDelay: cfg.Spin.AnimationDelay.Duration},
		Attempts:  store.NewPendingSpinStore(db),
		Threshold: cfg.Spin.Threshold,
	}, logger.With("component", "mirror"))
	if err := m.Restore(); err != nil {
		logger.Warn("restore session", "error", err)
	}

	console := admin.NewConsole(cfg.PasscodeGenerator(), m, admin.NewLog(admin.DefaultLogSize), logger.With("component", "admin"))

	return &Server{
		cfg:         cfg,
		hub:         hub,
		mirror:      m,
		console:     console,
		poller:      mirror.NewPoller(m, cfg.Poll.Interval.Duration, logger.With("component", "poller")),
		sessionH:    handler.NewSessionHandler(m, console, logger.With("component", "session")),
		eventH:      handler.NewEventHandler(m, logger.With("component", "event")),
		spinH:       handler.NewSpinHandler(m, logger.With("component", "spin")),
		redemptionH: handler.NewRedemptionHandler(m, logger.With("component", "redemption")),
		adminH:      handler.NewAdminHandler(m, console, logger.With("component", "admin_handler")),
		statsH:      handler.NewStatsHandler(m, logger.With("component", "stats")),
		rateLimiter: middleware.NewRateLimiter(10, time.Minute),
		logger:      logger,
	}, nil
}

func (s *Server) Mirror() *mirror.Mirror {
	return s.mirror
}

func (s *Server) Console() *admin.Console {
	return s.console
}

// Poller returns the background refresh task; the caller starts it.
func (s *Server) Poller() *mirror.Poller {
	return s.poller
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("POST /api/login", s.rateLimited(s.sessionH.Login))
	mux.HandleFunc("POST /api/register", s.sessionH.Register)
	mux.HandleFunc("POST /api/logout", s.sessionH.Logout)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.cfg.Server.AllowedOrigins, s.logger.With("component", "websocket")))

	signedIn := middleware.RequireSession(s.mirror)
	staff := middleware.RequireRole(s.mirror, model.RoleAdmin, model.RoleExecutive)
	executive := middleware.RequireRole(s.mirror, model.RoleExecutive)
	guard := func(mw func(http.Handler) http.Handler, h http.HandlerFunc) http.Handler {
		return mw(h)
	}

	// Any signed-in user
	mux.Handle("GET /api/state", guard(signedIn, s.sessionH.State))
	mux.Handle("GET /api/me", guard(signedIn, s.sessionH.Me))
	mux.Handle("GET /api/events", guard(signedIn, s.eventH.List))
	mux.Handle("POST /api/events/{id}/join", guard(signedIn, s.eventH.Join))
	mux.Handle("POST /api/feedback", guard(signedIn, s.eventH.Feedback))
	mux.Handle("GET /api/spin", guard(signedIn, s.spinH.Status))
	mux.Handle("POST /api/spin", guard(signedIn, s.spinH.Spin))
	mux.Handle("POST /api/spin/feedback", guard(signedIn, s.spinH.Submit))
	mux.Handle("GET /api/catalog", guard(signedIn, s.redemptionH.Catalog))
	mux.Handle("GET /api/redemptions", guard(signedIn, s.redemptionH.List))
	mux.Handle("GET /api/leaderboard", guard(signedIn, s.statsH.Leaderboard))
	mux.Handle("GET /api/redeem", guard(signedIn, s.redemptionH.Panel))
	mux.Handle("POST /api/redeem", guard(signedIn, s.redemptionH.Redeem))
	mux.Handle("DELETE /api/redeem", guard(signedIn, s.redemptionH.Reset))

	// Staff
	mux.Handle("POST /api/redemptions/{id}/approve", guard(staff, s.redemptionH.Approve))
	mux.Handle("POST /api/redemptions/{id}/reject", guard(staff, s.redemptionH.Reject))
	mux.Handle("GET /api/admin/events", guard(staff, s.adminH.Events))
	mux.Handle("POST /api/admin/events/{id}/authorize", s.rateLimited(guard(staff, s.adminH.Authorize).ServeHTTP))
	mux.Handle("GET /api/admin/events/{id}/roster", guard(staff, s.adminH.Roster))
	mux.Handle("POST /api/admin/events/{id}/grant", guard(staff, s.adminH.Grant))
	mux.Handle("POST /api/admin/events/{id}/grant-all", guard(staff, s.adminH.GrantAll))
	mux.Handle("GET /api/admin/log", guard(staff, s.adminH.Log))
	mux.Handle("GET /api/colleges", guard(staff, s.statsH.Colleges))
	mux.Handle("GET /api/distribution", guard(staff, s.statsH.Distribution))
	mux.Handle("GET /api/stats", guard(staff, s.statsH.Stats))
	mux.Handle("GET /api/users/export", guard(staff, s.statsH.Export))

	// Executive
	mux.Handle("GET /api/admin/passcodes", guard(executive, s.adminH.Passcodes))
	mux.Handle("POST /api/events", guard(executive, s.eventH.Create))
	mux.Handle("PUT /api/events/{id}", guard(executive, s.eventH.Update))
	mux.Handle("DELETE /api/events/{id}", guard(executive, s.eventH.Delete))
	mux.Handle("DELETE /api/users/{id}", guard(executive, s.adminH.DeleteUser))
	mux.Handle("POST /api/users/{id}/points", guard(executive, s.adminH.AdjustPoints))

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})

	var h http.Handler = mux
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	h = middleware.Recover(s.logger.With("component", "http"))(h)
	return c.Handler(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":       "ok",
		"clients":      s.hub.ClientCount(),
		"refreshed_at": s.mirror.RefreshedAt(),
	})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter)(h)
}
