package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"deeptracex/internal/commands"
	apperrors "deeptracex/internal/errors"
	"deeptracex/internal/permissions"
	"deeptracex/internal/services"
	"deeptracex/internal/validation"
)

// MemberHandler handles messages from regular users. The only conversation a
// member has with the bot is redeeming the binding code from the website.
type MemberHandler struct {
	BaseHandler
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(base BaseHandler) *MemberHandler {
	return &MemberHandler{BaseHandler: base}
}

// CanHandle checks if this handler can handle the given access type
func (h *MemberHandler) CanHandle(accessType permissions.AccessType) bool {
	return accessType == permissions.Member
}

// Handle processes a member update
func (h *MemberHandler) Handle(c telebot.Context) error {
	if c.Callback() != nil {
		return c.Respond(&telebot.CallbackResponse{})
	}

	text := strings.TrimSpace(c.Text())

	// /start <code> arrives from the deep link on the QR page
	if strings.HasPrefix(text, commands.Start) {
		code := strings.TrimSpace(strings.TrimPrefix(text, commands.Start))
		if code == "" {
			return h.sendWelcome(c)
		}
		return h.redeem(c, code)
	}

	if err := validation.ValidateBindCode(text); err == nil {
		return h.redeem(c, text)
	}

	return h.sendWelcome(c)
}

func (h *MemberHandler) sendWelcome(c telebot.Context) error {
	msg := "👋 Welcome to *DeepTraceX*!\n\n" +
		"Register on the website, then send me the 6-digit binding code " +
		"(or scan the QR code) to activate your account."
	return h.sendTextMessage(c, msg)
}

func (h *MemberHandler) redeem(c telebot.Context, code string) error {
	if err := validation.ValidateBindCode(code); err != nil {
		return h.sendTextMessage(c, "❌ Invalid binding code. Codes are 6 digits, like `483920`.")
	}

	result, err := h.verifyFlow.Redeem(context.Background(), code, c.Sender().ID)
	if err != nil {
		var invalid *apperrors.BindCodeInvalidError
		if errors.As(err, &invalid) {
			return h.sendTextMessage(c, "❌ Invalid or already used binding code. Request a new one from the website.")
		}
		h.logger.Errorf("Failed to redeem bind code: %v", err)
		return h.sendTextMessage(c, "❌ Something went wrong. Please try again later.")
	}

	switch result.Status {
	case services.Verified:
		msg := fmt.Sprintf(
			"✅ *Account linked successfully!*\n\nUsername: `%s`\nCredits: %d\n\nYou can now use DeepTraceX. 🎉",
			result.Username, result.Credits)
		return h.sendTextMessage(c, msg)
	case services.AlreadyLinkedSelf:
		msg := fmt.Sprintf(
			"ℹ️ Your Telegram account is already linked to `%s` (%d credits).",
			result.Username, result.Credits)
		return h.sendTextMessage(c, msg)
	case services.AlreadyLinkedOther:
		msg := fmt.Sprintf(
			"⚠️ This Telegram account is already linked to `%s`. One Telegram account can only verify one user.",
			result.Username)
		return h.sendTextMessage(c, msg)
	default:
		return h.sendTextMessage(c, "❌ Something went wrong. Please try again later.")
	}
}
