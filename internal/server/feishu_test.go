package server

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/lifestream-app/lifestream/internal/biz/usecase"
	"github.com/lifestream-app/lifestream/internal/infra/feishu"
	"github.com/lifestream-app/lifestream/internal/logging"
	"github.com/lifestream-app/lifestream/internal/service"
)

func init() {
	logging.SetOutput(io.Discard)
}

// Mock implementations

type mockMessageRepo struct {
	mu        sync.Mutex
	sentText  []string
	reactions []string
}

func (m *mockMessageRepo) SendText(ctx context.Context, chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentText = append(m.sentText, chatID+": "+text)
	return nil
}

func (m *mockMessageRepo) AddReaction(ctx context.Context, msgID, reactionType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reactions = append(m.reactions, msgID+":"+reactionType)
	return nil
}

type mockSource struct {
	handler feishu.MessageHandler
	msgs    []*feishu.Message
}

func (m *mockSource) OnMessage(handler feishu.MessageHandler) {
	m.handler = handler
}

// Start replays the queued messages synchronously
func (m *mockSource) Start(ctx context.Context) error {
	for _, msg := range m.msgs {
		m.handler(msg)
	}
	return nil
}

type memoryStateRepo struct {
	data map[string][]byte
}

func (m *memoryStateRepo) Save(ctx context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memoryStateRepo) Load(ctx context.Context, key string) ([]byte, error) {
	return m.data[key], nil
}

func (m *memoryStateRepo) Close() error { return nil }

func newTestService(t *testing.T) *service.LifeStreamService {
	t.Helper()
	uc := usecase.NewLifeStreamUsecase(
		&memoryStateRepo{data: map[string][]byte{}},
		usecase.NewExtractionPipeline(usecase.DefaultExtractionConfig()),
		usecase.NewResponseComposer(nil, nil, usecase.DefaultComposerConfig()),
		usecase.NewDispatcher(),
		usecase.DefaultScoringConfig(),
		nil,
		"Sam",
	)
	svc := service.NewLifeStreamService(uc, service.NewMetrics(), time.Hour, 30)
	svc.Load(context.Background())
	t.Cleanup(func() { svc.Close(context.Background()) })
	return svc
}

func TestFeishuServer_RepliesAndReacts(t *testing.T) {
	repo := &mockMessageRepo{}
	source := &mockSource{msgs: []*feishu.Message{
		{ChatID: "oc_1", MsgID: "om_1", Text: "went for a run"},
		{ChatID: "oc_1", MsgID: "om_2", Text: "hello there"},
	}}
	svc := newTestService(t)

	s := NewFeishuServer(source, repo, svc)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if len(repo.sentText) != 2 {
		t.Fatalf("Expected 2 replies, got %d", len(repo.sentText))
	}
	if len(repo.reactions) != 1 || repo.reactions[0] != "om_1:THUMBSUP" {
		t.Errorf("Expected one reaction on the logged message, got %v", repo.reactions)
	}
	if svc.Engagement().LogsToday != 2 {
		t.Errorf("Expected 2 logs today, got %d", svc.Engagement().LogsToday)
	}
}

func TestFeishuServer_Dedup(t *testing.T) {
	repo := &mockMessageRepo{}
	dup := &feishu.Message{ChatID: "oc_1", MsgID: "om_1", Text: "went for a run"}
	source := &mockSource{msgs: []*feishu.Message{dup, dup}}
	svc := newTestService(t)

	s := NewFeishuServer(source, repo, svc)
	s.Start(context.Background())

	if len(repo.sentText) != 1 {
		t.Errorf("Expected duplicate to be ignored, got %d replies", len(repo.sentText))
	}
	if svc.Engagement().TotalActivities != 1 {
		t.Errorf("Expected 1 activity, got %d", svc.Engagement().TotalActivities)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("Expected unchanged string, got %q", got)
	}
	if got := truncate("héllo world", 5); got != "héllo..." {
		t.Errorf("Expected rune-safe truncation, got %q", got)
	}
}
