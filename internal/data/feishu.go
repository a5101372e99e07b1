package data

import (
	"context"

	"github.com/lifestream-app/lifestream/internal/biz/repo"
	"github.com/lifestream-app/lifestream/internal/infra/feishu"
)

// feishuRepo implements the Feishu message repository
type feishuRepo struct {
	client *feishu.Client
}

// NewFeishuRepo creates a new Feishu repository
func NewFeishuRepo(client *feishu.Client) repo.MessageRepo {
	return &feishuRepo{client: client}
}

// SendText sends a text message
func (r *feishuRepo) SendText(ctx context.Context, chatID, text string) error {
	return r.client.SendText(ctx, chatID, text)
}

// AddReaction adds an emoji reaction
func (r *feishuRepo) AddReaction(ctx context.Context, msgID, reactionType string) error {
	return r.client.AddReaction(ctx, msgID, reactionType)
}
