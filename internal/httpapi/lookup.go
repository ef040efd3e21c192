package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deeptracex/internal/lookup"
	"deeptracex/internal/services"
)

type lookupRequest struct {
	Username string `json:"username"`
	Token    string `json:"token"`
	Query    string `json:"q"`

	// Endpoint-family aliases the original frontend sends.
	IP             string `json:"ip"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	LookupUsername string `json:"lookup_username"`
}

func (r *lookupRequest) query(kind lookup.Kind) string {
	if r.Query != "" {
		return r.Query
	}
	switch kind {
	case lookup.KindIP:
		return r.IP
	case lookup.KindPhone:
		return r.Phone
	case lookup.KindEmail:
		return r.Email
	case lookup.KindUsername:
		return r.LookupUsername
	}
	return ""
}

func (s *Server) handleLookup(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	kind := lookup.Kind(c.Param("type"))
	resp, err := s.gate.Execute(c.Request.Context(), services.LookupRequest{
		Username: req.Username,
		Token:    req.Token,
		Kind:     kind,
		Query:    req.query(kind),
		SourceIP: c.ClientIP(),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	body := gin.H{
		"success": true,
		"data":    resp.Result.Data,
		"credits": resp.Credits,
	}
	if resp.Result.Note != "" {
		body["note"] = resp.Result.Note
	}
	c.JSON(http.StatusOK, body)
}
