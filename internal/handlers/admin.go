package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"deeptracex/internal/commands"
	"deeptracex/internal/constants"
	apperrors "deeptracex/internal/errors"
	"deeptracex/internal/models"
	"deeptracex/internal/permissions"
	"deeptracex/internal/storage"
)

// AdminHandler handles messages from administrators
type AdminHandler struct {
	BaseHandler
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(base BaseHandler) *AdminHandler {
	return &AdminHandler{BaseHandler: base}
}

// CanHandle checks if this handler can handle the given access type
func (h *AdminHandler) CanHandle(accessType permissions.AccessType) bool {
	return accessType == permissions.Admin
}

// Handle processes an admin update
func (h *AdminHandler) Handle(c telebot.Context) error {
	if c.Callback() != nil {
		return h.handleCallback(c)
	}

	text := strings.TrimSpace(c.Text())
	if text == "" {
		return nil
	}

	state, err := h.stateService.GetState(c.Sender().ID)
	if err != nil {
		h.logger.Errorf("Failed to get state for user %d: %v", c.Sender().ID, err)
		state = &models.UserState{State: models.Default}
	}

	if text == commands.Cancel {
		h.stateService.ClearState(c.Sender().ID)
		return h.sendTextMessage(c, "Operation cancelled.")
	}

	if state.State != models.Default && !strings.HasPrefix(text, "/") {
		return h.handleStatefulInput(c, state.State, text)
	}

	return h.handleCommand(c, text)
}

func (h *AdminHandler) handleCommand(c telebot.Context, text string) error {
	fields := strings.Fields(text)
	cmd := fields[0]
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case commands.Start:
		return h.sendHelp(c)
	case commands.ViewUsers:
		return h.handleViewUsers(c)
	case commands.History:
		return h.handleHistory(c)
	case commands.AddCredit:
		return h.withUsername(c, arg, models.AwaitAddCreditUsername, h.handleAddCredit)
	case commands.RemoveCredit:
		return h.withUsername(c, arg, models.AwaitRemoveCreditUsername, h.handleRemoveCredit)
	case commands.Ban:
		return h.withUsername(c, arg, models.AwaitBanUsername, h.handleBan)
	case commands.Unban:
		return h.withUsername(c, arg, models.AwaitUnbanUsername, h.handleUnban)
	case commands.Reset:
		return h.withUsername(c, arg, models.AwaitResetUsername, h.handleReset)
	default:
		return h.sendTextMessage(c, "Unknown command. Use /start to see available commands.")
	}
}

// withUsername runs op immediately when the username was passed inline,
// otherwise asks for it and parks the conversation
func (h *AdminHandler) withUsername(
	c telebot.Context,
	arg string,
	await models.ConversationState,
	op func(c telebot.Context, username string) error,
) error {
	if arg != "" {
		return op(c, arg)
	}

	if err := h.stateService.WithConversationState(c.Sender().ID, await); err != nil {
		h.logger.Errorf("Failed to set state: %v", err)
	}
	return h.sendTextMessage(c, "Enter the username (or /cancel):")
}

func (h *AdminHandler) handleStatefulInput(c telebot.Context, state models.ConversationState, username string) error {
	h.stateService.ClearState(c.Sender().ID)

	switch state {
	case models.AwaitAddCreditUsername:
		return h.handleAddCredit(c, username)
	case models.AwaitRemoveCreditUsername:
		return h.handleRemoveCredit(c, username)
	case models.AwaitBanUsername:
		return h.handleBan(c, username)
	case models.AwaitUnbanUsername:
		return h.handleUnban(c, username)
	case models.AwaitResetUsername:
		return h.handleReset(c, username)
	default:
		return h.sendTextMessage(c, "Unknown command. Use /start to see available commands.")
	}
}

func (h *AdminHandler) sendHelp(c telebot.Context) error {
	help := "🔧 *DeepTraceX Admin*\n\n" +
		"/viewuser - list registered users\n" +
		"/history - recent lookups\n" +
		"/addcredit `<username>` - grant credits\n" +
		"/rmcredit `<username>` - wipe credits\n" +
		"/ban `<username>` - ban a user\n" +
		"/unban `<username>` - unban a user\n" +
		"/reset `<username>` - reset device binding\n" +
		"/cancel - cancel current operation"
	return h.sendTextMessage(c, help)
}

func (h *AdminHandler) handleViewUsers(c telebot.Context) error {
	accounts, err := h.adminService.ListUsers(context.Background())
	if err != nil {
		h.logger.Errorf("Failed to list users: %v", err)
		return h.sendTextMessage(c, "❌ Failed to load users.")
	}

	if len(accounts) == 0 {
		return h.sendTextMessage(c, "No registered users yet.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👥 *Users* (%d)\n\n", len(accounts))
	for _, acc := range accounts {
		fmt.Fprintf(&b, "`%s`: %d credits", acc.Username, acc.Credits)
		if acc.TelegramVerified {
			b.WriteString(" ✅")
		}
		if acc.Fingerprint == nil {
			b.WriteString(" (no device)")
		}
		fmt.Fprintf(&b, "\n  last login: %s\n", acc.LastLogin.Format(constants.TimestampFormat))
	}

	return h.sendTextMessage(c, b.String())
}

func (h *AdminHandler) handleHistory(c telebot.Context) error {
	entries, err := h.adminService.RecentHistory(context.Background(), constants.HistoryRenderLimit)
	if err != nil {
		h.logger.Errorf("Failed to load history: %v", err)
		return h.sendTextMessage(c, "❌ Failed to load history.")
	}

	if len(entries) == 0 {
		return h.sendTextMessage(c, "No lookups recorded yet.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📜 *Recent lookups* (%d)\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&b, "`%s` %s `%s` from %s\n  %s\n",
			e.Username, e.LookupType, e.Query, e.SourceIP,
			e.Timestamp.Format(constants.TimestampFormat))
	}

	return h.sendTextMessage(c, b.String())
}

func (h *AdminHandler) handleAddCredit(c telebot.Context, username string) error {
	if _, err := h.adminService.GetAccount(context.Background(), username); err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return h.sendTextMessage(c, fmt.Sprintf("❌ User `%s` not found.", username))
		}
		h.logger.Errorf("Failed to load account %s: %v", username, err)
		return h.sendTextMessage(c, "❌ Failed to load user.")
	}

	markup := &telebot.ReplyMarkup{}
	row := []telebot.InlineButton{}
	for _, amount := range constants.CreditPackages {
		row = append(row, telebot.InlineButton{
			Text: fmt.Sprintf("➕ %d credits", amount),
			Data: fmt.Sprintf("%s%s_%d", commands.CreditCallbackPrefix, username, amount),
		})
	}
	markup.InlineKeyboard = [][]telebot.InlineButton{row}

	return h.sendWithKeyboard(c, fmt.Sprintf("How many credits for `%s`?", username), markup)
}

func (h *AdminHandler) handleRemoveCredit(c telebot.Context, username string) error {
	acc, err := h.adminService.GetAccount(context.Background(), username)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return h.sendTextMessage(c, fmt.Sprintf("❌ User `%s` not found.", username))
		}
		h.logger.Errorf("Failed to load account %s: %v", username, err)
		return h.sendTextMessage(c, "❌ Failed to load user.")
	}

	markup := &telebot.ReplyMarkup{
		InlineKeyboard: [][]telebot.InlineButton{{
			{
				Text: "🗑 Remove all",
				Data: fmt.Sprintf("%s%s_%s", commands.WipeCallbackPrefix, commands.WipeAll, username),
			},
			{
				Text: "➗ Remove half",
				Data: fmt.Sprintf("%s%s_%s", commands.WipeCallbackPrefix, commands.WipeHalf, username),
			},
		}},
	}

	text := fmt.Sprintf("`%s` has %d credits. Remove how many?", username, acc.Credits)
	return h.sendWithKeyboard(c, text, markup)
}

func (h *AdminHandler) handleBan(c telebot.Context, username string) error {
	actor := strconv.FormatInt(c.Sender().ID, 10)
	if c.Sender().Username != "" {
		actor = c.Sender().Username
	}

	if _, err := h.adminService.Ban(context.Background(), username, actor); err != nil {
		h.logger.Errorf("Failed to ban %s: %v", username, err)
		return h.sendTextMessage(c, "❌ Failed to ban user.")
	}

	return h.sendTextMessage(c, fmt.Sprintf("🚫 `%s` is now banned.", username))
}

func (h *AdminHandler) handleUnban(c telebot.Context, username string) error {
	if err := h.adminService.Unban(context.Background(), username); err != nil {
		if errors.Is(err, storage.ErrNotBanned) {
			return h.sendTextMessage(c, fmt.Sprintf("`%s` is not banned.", username))
		}
		h.logger.Errorf("Failed to unban %s: %v", username, err)
		return h.sendTextMessage(c, "❌ Failed to unban user.")
	}

	return h.sendTextMessage(c, fmt.Sprintf("✅ `%s` is unbanned.", username))
}

func (h *AdminHandler) handleReset(c telebot.Context, username string) error {
	if err := h.adminService.ResetDevice(context.Background(), username); err != nil {
		var authErr *apperrors.AuthError
		if errors.As(err, &authErr) {
			return h.sendTextMessage(c, fmt.Sprintf("❌ User `%s` not found.", username))
		}
		h.logger.Errorf("Failed to reset device for %s: %v", username, err)
		return h.sendTextMessage(c, "❌ Failed to reset device binding.")
	}

	return h.sendTextMessage(c, fmt.Sprintf("🔄 Device binding for `%s` cleared. Next login binds a new device.", username))
}

func (h *AdminHandler) handleCallback(c telebot.Context) error {
	data := strings.TrimSpace(c.Callback().Data)

	switch {
	case strings.HasPrefix(data, commands.CreditCallbackPrefix):
		return h.handleCreditCallback(c, strings.TrimPrefix(data, commands.CreditCallbackPrefix))
	case strings.HasPrefix(data, commands.WipeCallbackPrefix):
		return h.handleWipeCallback(c, strings.TrimPrefix(data, commands.WipeCallbackPrefix))
	default:
		return c.Respond(&telebot.CallbackResponse{Text: "Unknown action"})
	}
}

// handleCreditCallback processes credit_<username>_<amount> callbacks
func (h *AdminHandler) handleCreditCallback(c telebot.Context, payload string) error {
	idx := strings.LastIndex(payload, "_")
	if idx <= 0 {
		return c.Respond(&telebot.CallbackResponse{Text: "Malformed action"})
	}

	username := payload[:idx]
	amount, err := strconv.ParseInt(payload[idx+1:], 10, 64)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: "Malformed action"})
	}

	balance, err := h.adminService.AddCredits(context.Background(), username, amount)
	if err != nil {
		h.logger.Errorf("Failed to add credits to %s: %v", username, err)
		return c.Respond(&telebot.CallbackResponse{Text: "Failed to add credits"})
	}

	c.Respond(&telebot.CallbackResponse{Text: "Credits added"})
	return h.sendTextMessage(c, fmt.Sprintf("💰 Added %d credits to `%s`. New balance: %d.", amount, username, balance))
}

// handleWipeCallback processes rm_<all|half>_<username> callbacks
func (h *AdminHandler) handleWipeCallback(c telebot.Context, payload string) error {
	action, username, ok := strings.Cut(payload, "_")
	if !ok {
		return c.Respond(&telebot.CallbackResponse{Text: "Malformed action"})
	}

	switch action {
	case commands.WipeAll:
		old, err := h.adminService.WipeAll(context.Background(), username)
		if err != nil {
			h.logger.Errorf("Failed to wipe credits for %s: %v", username, err)
			return c.Respond(&telebot.CallbackResponse{Text: "Failed to remove credits"})
		}
		c.Respond(&telebot.CallbackResponse{Text: "Credits removed"})
		return h.sendTextMessage(c, fmt.Sprintf("🗑 Removed all %d credits from `%s`.", old, username))
	case commands.WipeHalf:
		old, remaining, err := h.adminService.WipeHalf(context.Background(), username)
		if err != nil {
			h.logger.Errorf("Failed to halve credits for %s: %v", username, err)
			return c.Respond(&telebot.CallbackResponse{Text: "Failed to remove credits"})
		}
		c.Respond(&telebot.CallbackResponse{Text: "Credits removed"})
		return h.sendTextMessage(c, fmt.Sprintf("➗ `%s`: %d → %d credits.", username, old, remaining))
	default:
		return c.Respond(&telebot.CallbackResponse{Text: "Unknown action"})
	}
}
