package handlers

import (
	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"deeptracex/internal/config"
	"deeptracex/internal/constants"
	"deeptracex/internal/permissions"
	"deeptracex/internal/services"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	adminService *services.AdminService
	verifyFlow   *services.TelegramVerificationFlow
	stateService *services.UserStateService
	config       *config.Config
	logger       *logrus.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(
	adminService *services.AdminService,
	verifyFlow *services.TelegramVerificationFlow,
	stateService *services.UserStateService,
	config *config.Config,
	logger *logrus.Logger,
) BaseHandler {
	return BaseHandler{
		adminService: adminService,
		verifyFlow:   verifyFlow,
		stateService: stateService,
		config:       config,
		logger:       logger,
	}
}

// CanHandle checks if the handler can handle the given access type
func (h *BaseHandler) CanHandle(accessType permissions.AccessType) bool {
	// Base handler can't handle any access type directly
	return false
}

// sendTextMessage sends a text message, chunked to fit Telegram's limit
func (h *BaseHandler) sendTextMessage(c telebot.Context, text string) error {
	opts := &telebot.SendOptions{
		ParseMode: telebot.ModeMarkdown,
	}

	for len(text) > constants.MaxMessageSize {
		if _, err := c.Bot().Send(c.Recipient(), text[:constants.MaxMessageSize], opts); err != nil {
			h.logger.Errorf("Failed to send message: %v", err)
			return err
		}
		text = text[constants.MaxMessageSize:]
	}

	_, err := c.Bot().Send(c.Recipient(), text, opts)
	if err != nil {
		h.logger.Errorf("Failed to send message: %v", err)
	}
	return err
}

// sendWithKeyboard sends a text message with an inline keyboard
func (h *BaseHandler) sendWithKeyboard(c telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	opts := &telebot.SendOptions{
		ParseMode:   telebot.ModeMarkdown,
		ReplyMarkup: markup,
	}

	_, err := c.Bot().Send(c.Recipient(), text, opts)
	if err != nil {
		h.logger.Errorf("Failed to send message: %v", err)
	}
	return err
}
