package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// adminCredentials returns the configured login, falling back to
// development defaults.
func (s *Server) adminCredentials() (string, string) {
	user, pass := s.cfg.Admin.Username, s.cfg.Admin.Password
	if user == "" {
		user = "admin"
		s.logger.Warn("using default admin username; set PORTFOLIO_ADMIN__USERNAME")
	}
	if pass == "" {
		pass = "admin123"
		s.logger.Warn("using default admin password; set PORTFOLIO_ADMIN__PASSWORD")
	}
	return user, pass
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	log := s.logger.With("component", "admin")

	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{"title": "Privacy Policy"})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		user, pass := s.adminCredentials()
		if c.PostForm("username") == user && c.PostForm("password") == pass {
			c.SetCookie("admin_token", s.adminToken, 3600*24, "/admin", "", false, true)
			log.Info("admin login", "from", s.analytics.HashIP(c.ClientIP()))
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		log.Warn("failed admin login", "from", s.analytics.HashIP(c.ClientIP()))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{"error": "Invalid credentials"})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie("admin_token", "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := r.Group("/admin")
	admin.Use(s.adminAuth())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.analytics.Stats(c.Request.Context())
		if err != nil {
			log.Error("loading admin stats", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load statistics"})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats":    stats,
			"sessions": s.sessions.Len(),
		})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.analytics.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/visitors", func(c *gin.Context) {
		visits, err := s.analytics.RecentVisits(c.Request.Context(), 200)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load visitors"})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{"visitors": visits})
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		n, err := s.analytics.Cleanup(c.Request.Context(), s.cfg.Analytics.Retention)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "removed": n})
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.analytics.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=portfolio-stats.json")
		log.Info("stats exported", "by", s.analytics.HashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}
