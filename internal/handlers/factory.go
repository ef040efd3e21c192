package handlers

import (
	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"deeptracex/internal/config"
	"deeptracex/internal/permissions"
	"deeptracex/internal/services"
)

// MessageHandler defines the interface for handling messages
type MessageHandler interface {
	Handle(c telebot.Context) error
	CanHandle(accessType permissions.AccessType) bool
}

// HandlerFactory creates handlers based on access type
type HandlerFactory struct {
	adminHandler  *AdminHandler
	memberHandler *MemberHandler
}

// NewHandlerFactory creates a new handler factory
func NewHandlerFactory(
	adminService *services.AdminService,
	verifyFlow *services.TelegramVerificationFlow,
	stateService *services.UserStateService,
	config *config.Config,
	logger *logrus.Logger,
) *HandlerFactory {
	base := NewBaseHandler(adminService, verifyFlow, stateService, config, logger)

	return &HandlerFactory{
		adminHandler:  NewAdminHandler(base),
		memberHandler: NewMemberHandler(base),
	}
}

// GetHandler returns the appropriate handler for the given access type
func (f *HandlerFactory) GetHandler(accessType permissions.AccessType) MessageHandler {
	switch accessType {
	case permissions.Admin:
		return f.adminHandler
	default:
		return f.memberHandler
	}
}
