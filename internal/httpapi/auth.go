package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deeptracex/internal/validation"
)

type registerRequest struct {
	Username string `json:"username"`
}

type sessionRequest struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	session, err := s.accounts.RegisterOrLogin(c.Request.Context(),
		req.Username, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := gin.H{
		"success":  true,
		"username": session.Username,
		"token":    session.Token,
		"credits":  session.Credits,
		"is_new":   session.IsNew,
	}
	if session.BindCode != nil {
		resp["telegram_required"] = true
		resp["bind_code"] = *session.BindCode
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCheckAuth(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Token == "" {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	session, err := s.accounts.CheckSession(c.Request.Context(), req.Username, req.Token)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"username": session.Username,
		"credits":  session.Credits,
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	// Sessions live on the client; nothing to tear down server-side.
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleCheckCredits(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	credits, err := s.accounts.Credits(c.Request.Context(), req.Username)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "credits": credits})
}

func (s *Server) handleBindQR(c *gin.Context) {
	code := c.Query("code")
	if err := validation.ValidateBindCode(code); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	png, err := s.qr.BindQR(code)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
