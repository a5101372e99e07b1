package server

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/lifestream-app/lifestream/internal/biz/repo"
	"github.com/lifestream-app/lifestream/internal/infra/feishu"
	"github.com/lifestream-app/lifestream/internal/logging"
	"github.com/lifestream-app/lifestream/internal/service"
)

// Reaction added to messages that logged at least one activity
const loggedReaction = "THUMBSUP"

// MessageSource delivers inbound Feishu messages
type MessageSource interface {
	OnMessage(handler feishu.MessageHandler)
	Start(ctx context.Context) error
}

// FeishuServer routes Feishu messages into LifeStream and replies in the same chat
type FeishuServer struct {
	source      MessageSource
	messageRepo repo.MessageRepo
	svc         *service.LifeStreamService

	// Message deduplication cache; Feishu redelivers unacknowledged events
	seenMsgs *cache.Cache
}

// NewFeishuServer creates a new Feishu server
func NewFeishuServer(source MessageSource, messageRepo repo.MessageRepo, svc *service.LifeStreamService) *FeishuServer {
	return &FeishuServer{
		source:      source,
		messageRepo: messageRepo,
		svc:         svc,
		seenMsgs:    cache.New(5*time.Minute, 10*time.Minute),
	}
}

// Start sets the message handler and blocks on the Feishu connection
func (s *FeishuServer) Start(ctx context.Context) error {
	s.source.OnMessage(func(msg *feishu.Message) {
		s.handleMessage(ctx, msg)
	})
	return s.source.Start(ctx)
}

// handleMessage handles Feishu messages
func (s *FeishuServer) handleMessage(ctx context.Context, msg *feishu.Message) {
	log := logging.For("Server").WithField("chat_id", msg.ChatID)
	log.Infof("Received from %s (chatType=%s): %s", msg.SenderID, msg.ChatType, truncate(msg.Text, 50))

	// Add fails when the id is already cached
	if err := s.seenMsgs.Add(msg.MsgID, struct{}{}, cache.DefaultExpiration); err != nil {
		log.Debugf("Duplicate message ignored: %s", msg.MsgID)
		return
	}

	result, err := s.svc.HandleMessage(ctx, msg.Text)
	if err != nil {
		log.WithError(err).Warn("Handle message error")
		return
	}

	if len(result.Activities) > 0 {
		if err := s.messageRepo.AddReaction(ctx, msg.MsgID, loggedReaction); err != nil {
			log.WithError(err).Debug("Failed to add reaction")
		}
	}

	if result.Reply == nil || result.Reply.Text == "" {
		return
	}
	if err := s.messageRepo.SendText(ctx, msg.ChatID, result.Reply.Text); err != nil {
		log.WithError(err).Warn("Failed to send reply")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
