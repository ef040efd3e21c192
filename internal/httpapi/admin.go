package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"deeptracex/internal/commands"
	"deeptracex/internal/constants"
	"deeptracex/internal/storage"
)

type adminRequest struct {
	Username string `json:"username"`
	Amount   int64  `json:"amount"`
	Action   string `json:"action"`
}

func (s *Server) bindAdminRequest(c *gin.Context) (*adminRequest, bool) {
	var req adminRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Username required"})
		return nil, false
	}
	return &req, true
}

func (s *Server) handleAdminUsers(c *gin.Context) {
	users, err := s.admin.ListUsers(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

func (s *Server) handleAdminHistory(c *gin.Context) {
	history, err := s.admin.RecentHistory(c.Request.Context(), constants.HistoryCap)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": history})
}

func (s *Server) handleAdminBan(c *gin.Context) {
	req, ok := s.bindAdminRequest(c)
	if !ok {
		return
	}

	if _, err := s.admin.Ban(c.Request.Context(), req.Username, "admin"); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("User %s banned successfully", req.Username),
	})
}

func (s *Server) handleAdminUnban(c *gin.Context) {
	req, ok := s.bindAdminRequest(c)
	if !ok {
		return
	}

	if err := s.admin.Unban(c.Request.Context(), req.Username); err != nil {
		if errors.Is(err, storage.ErrNotBanned) {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "User is not banned"})
			return
		}
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("User %s unbanned successfully", req.Username),
	})
}

func (s *Server) handleAdminAddCredit(c *gin.Context) {
	req, ok := s.bindAdminRequest(c)
	if !ok {
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Invalid parameters"})
		return
	}

	balance, err := s.admin.AddCredits(c.Request.Context(), req.Username, req.Amount)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     fmt.Sprintf("Added %d credits to %s", req.Amount, req.Username),
		"new_balance": balance,
	})
}

func (s *Server) handleAdminRemoveCredit(c *gin.Context) {
	req, ok := s.bindAdminRequest(c)
	if !ok {
		return
	}

	var (
		old, updated int64
		err          error
	)
	switch req.Action {
	case commands.WipeAll:
		old, err = s.admin.WipeAll(c.Request.Context(), req.Username)
		updated = 0
	case commands.WipeHalf:
		old, updated, err = s.admin.WipeHalf(c.Request.Context(), req.Username)
	default:
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Invalid action"})
		return
	}
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"previous":    old,
		"new_balance": updated,
	})
}

func (s *Server) handleAdminReset(c *gin.Context) {
	req, ok := s.bindAdminRequest(c)
	if !ok {
		return
	}

	if err := s.admin.ResetDevice(c.Request.Context(), req.Username); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Device binding reset for %s", req.Username),
	})
}
