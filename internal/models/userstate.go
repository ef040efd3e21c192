package models

// ConversationState represents the state of a conversation with an admin
type ConversationState int

const (
	// Default is the initial state
	Default ConversationState = iota
	// AwaitAddCreditUsername is the state when the admin is entering a username to grant credits to
	AwaitAddCreditUsername
	// AwaitRemoveCreditUsername is the state when the admin is entering a username to wipe credits from
	AwaitRemoveCreditUsername
	// AwaitBanUsername is the state when the admin is entering a username to ban
	AwaitBanUsername
	// AwaitUnbanUsername is the state when the admin is entering a username to unban
	AwaitUnbanUsername
	// AwaitResetUsername is the state when the admin is entering a username for a device reset
	AwaitResetUsername
)

// UserState represents the state of a user's conversation
type UserState struct {
	State   ConversationState
	Payload *string
}
