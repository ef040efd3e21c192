package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "deeptracex/internal/errors"
)

// respondError maps the gate error taxonomy to user-facing JSON outcomes.
// Business rejections answer 200 with success=false the way the original
// frontend expects; only store/internal faults surface as 500.
func (s *Server) respondError(c *gin.Context, err error) {
	var (
		authErr         *apperrors.AuthError
		bannedErr       *apperrors.BannedError
		verifyErr       *apperrors.VerificationRequiredError
		creditsErr      *apperrors.InsufficientCreditsError
		validationErr   *apperrors.ValidationError
		upstreamErr     *apperrors.UpstreamError
		notFoundErr     *apperrors.NotFoundError
		mismatchErr     *apperrors.DeviceMismatchError
		alreadyBoundErr *apperrors.AlreadyBoundError
		bindCodeErr     *apperrors.BindCodeInvalidError
	)

	switch {
	case errors.As(err, &bannedErr):
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"banned":  true,
			"error":   "This account has been banned",
		})
	case errors.As(err, &verifyErr):
		c.JSON(http.StatusOK, gin.H{
			"success":           false,
			"telegram_required": true,
			"bind_code":         verifyErr.BindCode,
			"error":             "Please verify your Telegram account first",
		})
	case errors.As(err, &authErr):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Invalid session"})
	case errors.As(err, &creditsErr):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Insufficient credits"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": validationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "No record found"})
	case errors.As(err, &upstreamErr):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Lookup service unavailable"})
	case errors.As(err, &mismatchErr):
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error":   "This username is already registered from another device",
		})
	case errors.As(err, &alreadyBoundErr):
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error":   "You already have an account. Please use your existing username.",
		})
	case errors.As(err, &bindCodeErr):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Invalid binding code"})
	default:
		s.logger.Errorf("Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal error"})
	}
}
