package repo

import "context"

// MessageRepo is the chat channel interface
// Responsible for delivering replies back to Feishu
type MessageRepo interface {
	// SendText sends a text message to a chat
	SendText(ctx context.Context, chatID, text string) error

	// AddReaction adds an emoji reaction to a message
	AddReaction(ctx context.Context, msgID, reactionType string) error
}
