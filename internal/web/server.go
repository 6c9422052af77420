// Package web serves the portfolio page, its HTMX fragments, the
// WebSocket scroll bridge and the analytics admin pages.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vijaikiren/portfolio/internal/config"
	"github.com/vijaikiren/portfolio/internal/content"
	"github.com/vijaikiren/portfolio/internal/session"
	"github.com/vijaikiren/portfolio/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	sessionCookie = "portfolio_session"
	sessionHeader = "X-Portfolio-Session"
)

// Server wires the HTTP surface to the content catalog and page sessions.
type Server struct {
	cfg       *config.Config
	catalog   *content.Catalog
	sessions  *session.Store
	analytics *store.DB // nil when analytics is disabled
	logger    *slog.Logger

	adminToken string
	engine     *gin.Engine
}

// New builds the router. analytics may be nil.
func New(cfg *config.Config, catalog *content.Catalog, sessions *session.Store, analytics *store.DB, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		catalog:   catalog,
		sessions:  sessions,
		analytics: analytics,
		logger:    logger,
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	r.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	r.StaticFS("/static", http.FS(static))
	if cfg.AssetsDir != "" {
		r.Static("/assets", cfg.AssetsDir)
	}

	if analytics != nil {
		r.Use(visitorTracking(analytics, logger))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": sessions.Len()})
	})
	r.GET("/", s.handleIndex)
	r.GET("/nav", s.handleNav)
	r.GET("/certificates/:index", s.handleSelectCertificate)
	r.DELETE("/certificates/selected", s.handleDismissCertificate)
	r.GET("/ws", s.handleWebSocket)

	if analytics != nil {
		token, err := store.RandomToken()
		if err != nil {
			return nil, err
		}
		s.adminToken = token
		s.setupAdminRoutes(r)
	}

	s.engine = r
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully. It also
// drives the session janitor and the analytics retention sweep.
func (s *Server) Run(ctx context.Context) error {
	go s.sessions.Run(ctx, s.cfg.Session.SweepInterval)
	if s.analytics != nil {
		go s.retentionLoop(ctx)
	}

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("portfolio listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) retentionLoop(ctx context.Context) {
	sweep := func() {
		n, err := s.analytics.Cleanup(ctx, s.cfg.Analytics.Retention)
		if err != nil {
			s.logger.Error("analytics cleanup failed", "error", err)
			return
		}
		if n > 0 {
			s.logger.Info("privacy cleanup removed old visits", "rows", n)
		}
	}
	sweep()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}

// currentSession resolves the page session. The page-specific ID from the
// session query parameter or the session header wins; the cookie is shared
// by every tab and only used when neither is present. A cookie-resolved
// session has its cookie lifetime extended.
func (s *Server) currentSession(c *gin.Context) (*session.Session, error) {
	id := c.Query("session")
	if id == "" {
		id = c.GetHeader(sessionHeader)
	}
	fromCookie := false
	if id == "" {
		id, _ = c.Cookie(sessionCookie)
		fromCookie = true
	}
	if id == "" {
		return nil, session.ErrNotFound
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if fromCookie {
		s.setSessionCookie(c, sess.ID)
	}
	return sess, nil
}

func (s *Server) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, int(s.cfg.Session.TTL.Seconds()), "/", "", false, true)
}
