package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
	"github.com/lifestream-app/lifestream/internal/biz/usecase"
	"github.com/lifestream-app/lifestream/internal/logging"
)

func init() {
	logging.SetOutput(io.Discard)
}

// Mock implementations

type mockStateRepo struct {
	mu      sync.Mutex
	data    map[string][]byte
	saveErr error
	saves   int
}

func newMockStateRepo() *mockStateRepo {
	return &mockStateRepo{data: make(map[string][]byte)}
}

func (m *mockStateRepo) Save(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockStateRepo) Load(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *mockStateRepo) Close() error { return nil }

func (m *mockStateRepo) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *mockStateRepo) setSaveErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func at(day string, hour int) time.Time {
	t, err := time.ParseInLocation("2006-01-02", day, time.Local)
	if err != nil {
		panic(err)
	}
	return t.Add(time.Duration(hour) * time.Hour)
}

func newTestService(store *mockStateRepo, clock *fakeClock, debounce time.Duration) *LifeStreamService {
	uc := usecase.NewLifeStreamUsecase(
		store,
		usecase.NewExtractionPipeline(usecase.DefaultExtractionConfig()),
		usecase.NewResponseComposer(nil, nil, usecase.DefaultComposerConfig()),
		usecase.NewDispatcher(),
		usecase.DefaultScoringConfig(),
		clock,
		"Sam",
	)
	return NewLifeStreamService(uc, NewMetrics(), debounce, 30)
}

func TestService_HandleMessageCountsMetrics(t *testing.T) {
	clock := &fakeClock{now: at("2026-03-10", 9)}
	svc := newTestService(newMockStateRepo(), clock, time.Hour)
	svc.Load(context.Background())

	result, err := svc.HandleMessage(context.Background(), "did yoga for 20 minutes and read for 30 minutes")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if len(result.Activities) != 2 {
		t.Fatalf("Expected 2 activities, got %d", len(result.Activities))
	}

	m := svc.Metrics()
	if got := testutil.ToFloat64(m.MessagesProcessed); got != 1 {
		t.Errorf("Expected 1 processed message, got %v", got)
	}
	if got := testutil.ToFloat64(m.ActivitiesLogged.WithLabelValues("fitness")); got != 1 {
		t.Errorf("Expected 1 fitness activity, got %v", got)
	}
	if got := testutil.ToFloat64(m.Replies.WithLabelValues(usecase.SourceTemplate)); got != 1 {
		t.Errorf("Expected 1 template reply, got %v", got)
	}
	// Both "Stay Active Daily" and "Learn Something New" (30 min) complete
	if got := testutil.ToFloat64(m.GoalsCompleted); got != 2 {
		t.Errorf("Expected 2 goal completions, got %v", got)
	}
	if got := testutil.ToFloat64(m.ActivitiesLogged.WithLabelValues("learning")); got != 1 {
		t.Errorf("Expected 1 learning activity, got %v", got)
	}
}

func TestService_DebouncedSave(t *testing.T) {
	store := newMockStateRepo()
	clock := &fakeClock{now: at("2026-03-10", 9)}
	svc := newTestService(store, clock, 50*time.Millisecond)
	svc.Load(context.Background())

	for i := 0; i < 5; i++ {
		if _, err := svc.HandleMessage(context.Background(), "went for a walk"); err != nil {
			t.Fatalf("HandleMessage failed: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for svc.Dirty() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if svc.Dirty() {
		t.Fatal("Expected debounced save to clear dirty flag")
	}
	if store.saveCount() == 0 {
		t.Error("Expected at least one save")
	}
	if store.saveCount() >= 6 {
		t.Errorf("Expected burst to coalesce, got %d saves", store.saveCount())
	}
}

func TestService_FailedFlushStaysDirty(t *testing.T) {
	store := newMockStateRepo()
	clock := &fakeClock{now: at("2026-03-10", 9)}
	svc := newTestService(store, clock, time.Hour)
	svc.Load(context.Background())

	store.setSaveErr(errors.New("disk full"))
	svc.HandleMessage(context.Background(), "went for a run")

	if err := svc.Flush(context.Background()); err == nil {
		t.Fatal("Expected flush error")
	}
	if !svc.Dirty() {
		t.Error("Expected state to stay dirty after failed flush")
	}
	if got := testutil.ToFloat64(svc.Metrics().StateSaves.WithLabelValues("error")); got != 1 {
		t.Errorf("Expected 1 failed save, got %v", got)
	}

	store.setSaveErr(nil)
	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("Final flush failed: %v", err)
	}
	if svc.Dirty() || store.saveCount() != 1 {
		t.Errorf("Expected final flush to save once, dirty=%v saves=%d", svc.Dirty(), store.saveCount())
	}
}

func TestService_CloseFlushesAndReloads(t *testing.T) {
	store := newMockStateRepo()
	clock := &fakeClock{now: at("2026-03-10", 9)}
	svc := newTestService(store, clock, time.Hour)
	svc.Load(context.Background())

	goal, err := svc.CreateGoal(usecase.GoalInput{Title: "Piano", Category: domain.CategoryCreative, Target: 20})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	svc.HandleMessage(context.Background(), "played piano for 25 minutes")
	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reloaded := newTestService(store, clock, time.Hour)
	reloaded.Load(context.Background())

	var found bool
	for _, g := range reloaded.Goals(false) {
		if g.ID == goal.ID {
			found = true
			if g.Streak != 1 || g.Today != 25 {
				t.Errorf("Unexpected reloaded goal: %+v", g)
			}
		}
	}
	if !found {
		t.Error("Expected created goal after reload")
	}
}

func TestService_ConcurrentMessages(t *testing.T) {
	clock := &fakeClock{now: at("2026-03-10", 9)}
	svc := newTestService(newMockStateRepo(), clock, 5*time.Millisecond)
	svc.Load(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.HandleMessage(context.Background(), "went for a run")
			svc.Goals(false)
			svc.Summary(7)
		}()
	}
	wg.Wait()

	if got := svc.Engagement().TotalActivities; got != 20 {
		t.Errorf("Expected 20 activities, got %d", got)
	}
	if err := svc.Close(context.Background()); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestService_RolloverAndPurge(t *testing.T) {
	clock := &fakeClock{now: at("2026-01-01", 9)}
	svc := newTestService(newMockStateRepo(), clock, time.Hour)
	svc.Load(context.Background())
	svc.HandleMessage(context.Background(), "went for a run")

	clock.Set(at("2026-01-02", 0))
	if !svc.Rollover() {
		t.Error("Expected rollover on new day")
	}
	if svc.Rollover() {
		t.Error("Expected second rollover on same day to be a no-op")
	}
	if svc.Engagement().StreakDays != 1 {
		t.Errorf("Expected streak 1, got %d", svc.Engagement().StreakDays)
	}

	clock.Set(at("2026-02-15", 0))
	if n := svc.PurgeExpired(); n != 1 {
		t.Errorf("Expected 1 purged activity, got %d", n)
	}
	if got := testutil.ToFloat64(svc.Metrics().ActivitiesPurged); got != 1 {
		t.Errorf("Expected purge metric 1, got %v", got)
	}
}

func TestService_Activities(t *testing.T) {
	clock := &fakeClock{now: at("2026-03-01", 9)}
	svc := newTestService(newMockStateRepo(), clock, time.Hour)
	svc.Load(context.Background())
	svc.HandleMessage(context.Background(), "went for a run")

	clock.Set(at("2026-03-10", 9))
	svc.HandleMessage(context.Background(), "read a book")

	if got := len(svc.Activities(7)); got != 1 {
		t.Errorf("Expected 1 activity in last 7 days, got %d", got)
	}
	if got := len(svc.Activities(0)); got != 2 {
		t.Errorf("Expected 2 activities overall, got %d", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.Observe(domain.Event{Type: domain.EventPointsAwarded, Points: 38})

	if got := testutil.ToFloat64(m.PointsAwarded); got != 38 {
		t.Errorf("Expected 38 points, got %v", got)
	}
	expected := `
# HELP lifestream_points_awarded_total Total number of points awarded
# TYPE lifestream_points_awarded_total counter
lifestream_points_awarded_total 38
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "lifestream_points_awarded_total"); err != nil {
		t.Errorf("Unexpected exposition: %v", err)
	}
}
