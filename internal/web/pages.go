package web

import (
	"context"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vijaikiren/portfolio/internal/content"
	"github.com/vijaikiren/portfolio/internal/navigation"
)

var templateFuncs = template.FuncMap{
	"iconGlyph": func(name string) string {
		switch name {
		case "user":
			return "👤"
		case "graduation":
			return "🎓"
		case "award":
			return "🏅"
		}
		return "•"
	},
}

type navData struct {
	Items      []content.NavItem
	Controller *navigation.Controller
}

// IsActive is called from the nav template to highlight the item in view.
func (n navData) IsActive(index int) bool { return n.Controller.IsActive(index) }

func (s *Server) handleIndex(c *gin.Context) {
	sess := s.sessions.Create()
	s.setSessionCookie(c, sess.ID)

	c.HTML(http.StatusOK, "index.html", gin.H{
		"SessionID": sess.ID,
		"Nav":       navData{Items: content.Nav(), Controller: sess.Controller},
		"Catalog":   s.catalog,
		"About":     s.catalog.AboutHTML(),
		"Selected":  sess.Controller.Selected(),
	})
}

func (s *Server) handleNav(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		c.String(http.StatusNotFound, "")
		return
	}
	c.HTML(http.StatusOK, "nav", navData{Items: content.Nav(), Controller: sess.Controller})
}

func (s *Server) handleSelectCertificate(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		c.String(http.StatusNotFound, "")
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.String(http.StatusNotFound, "")
		return
	}
	rec, err := s.catalog.Certificate(index)
	if err != nil {
		c.String(http.StatusNotFound, "")
		return
	}

	sess.Controller.SelectCertificate(rec)
	if s.analytics != nil {
		go func(title string) {
			if err := s.analytics.RecordCertificateView(context.Background(), index, title); err != nil {
				s.logger.Warn("recording certificate view", "error", err, "index", index)
			}
		}(rec.Title)
	}

	c.HTML(http.StatusOK, "modal", sess.Controller.Selected())
}

func (s *Server) handleDismissCertificate(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		c.String(http.StatusNotFound, "")
		return
	}
	sess.Controller.DismissCertificate()
	c.String(http.StatusOK, "")
}
