package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"WolfHunter/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine serves scripted scores; each Evaluate returns a new result unless cached.
type fakeEngine struct {
	mu          sync.Mutex
	scores      map[model.Timeframe]int
	errs        map[model.Timeframe]error
	stale       map[model.Timeframe]bool
	calls       int
	invalidated []model.Timeframe
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		scores: map[model.Timeframe]int{},
		errs:   map[model.Timeframe]error{},
		stale:  map[model.Timeframe]bool{},
	}
}

func (f *fakeEngine) Evaluate(_ context.Context, tf model.Timeframe) (*model.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[tf]; err != nil {
		return nil, err
	}
	series, _ := model.NewSeries(tf, []model.Candle{{Timestamp: 1, Close: 1}})
	return &model.Result{
		ID:        fmt.Sprintf("%s-%d", tf, f.calls),
		Timeframe: tf,
		Series:    series,
		BuyScore:  f.scores[tf],
		Level:     model.ScoreLevel{Label: "LEVEL"},
		Stale:     f.stale[tf],
	}, nil
}

func (f *fakeEngine) Invalidate(tf model.Timeframe) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, tf)
}

func (f *fakeEngine) set(tf model.Timeframe, score int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores[tf] = score
}

type fakeSender struct {
	mu       sync.Mutex
	sent     []string
	attempts int
	err      error
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func newTestScheduler(tfs ...model.Timeframe) (*Scheduler, *fakeEngine, *fakeSender) {
	eng := newFakeEngine()
	snd := &fakeSender{}
	s := NewScheduler(context.Background(), eng, snd, "OKMUSDT", tfs, 70)
	s.Now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return s, eng, snd
}

func TestEvaluateTask_AlertsOnceUntilRearmed(t *testing.T) {
	s, eng, snd := newTestScheduler(model.Timeframe1h)

	for _, score := range []int{75, 80, 60, 72} {
		eng.set(model.Timeframe1h, score)
		s.RunEvaluateNow()
	}

	require.Len(t, snd.sent, 2)
	assert.Contains(t, snd.sent[0], "score 75 ≥ 70")
	assert.Contains(t, snd.sent[1], "score 72 ≥ 70")
}

func TestEvaluateTask_FailedAlertIsRetried(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.json")
	s, eng, snd := newTestScheduler(model.Timeframe1h)
	s.StateFile = path
	eng.set(model.Timeframe1h, 90)

	snd.err = errors.New("telegram down")
	s.RunEvaluateNow()
	assert.Equal(t, 1, snd.attempts)
	assert.Empty(t, snd.sent)
	state, err := LoadAlertState(path)
	require.NoError(t, err)
	assert.False(t, state.Alerted[model.Timeframe1h], "undelivered alert must not latch")

	snd.err = nil
	s.RunEvaluateNow()
	require.Len(t, snd.sent, 1)
	assert.Contains(t, snd.sent[0], "score 90 ≥ 70")

	s.RunEvaluateNow()
	assert.Equal(t, 2, snd.attempts, "delivered alert latches")
	state, err = LoadAlertState(path)
	require.NoError(t, err)
	assert.True(t, state.Alerted[model.Timeframe1h])
}

func TestEvaluateTask_AlertStatePerTimeframe(t *testing.T) {
	s, eng, snd := newTestScheduler(model.Timeframe1h, model.Timeframe4h)
	eng.set(model.Timeframe1h, 90)
	eng.set(model.Timeframe4h, 70)

	s.RunEvaluateNow()
	s.RunEvaluateNow()

	require.Len(t, snd.sent, 2)
	assert.Contains(t, snd.sent[0], "OKMUSDT 1h")
	assert.Contains(t, snd.sent[1], "OKMUSDT 4h")
}

func TestEvaluateTask_StaleAndFailuresDoNotAlert(t *testing.T) {
	s, eng, snd := newTestScheduler(model.Timeframe1h, model.Timeframe1d)
	eng.set(model.Timeframe1h, 95)
	eng.stale[model.Timeframe1h] = true
	eng.errs[model.Timeframe1d] = model.ErrDataUnavailable

	s.RunEvaluateNow()

	assert.Empty(t, snd.sent)
}

func TestHandleCommand_Score(t *testing.T) {
	s, eng, _ := newTestScheduler(model.Timeframe1h, model.Timeframe4h)
	eng.set(model.Timeframe1h, 42)

	reply := s.HandleCommand(context.Background(), "/score 1h")
	assert.Contains(t, reply, "OKMUSDT 1h")
	assert.Contains(t, reply, "Buy score: 42/100")

	reply = s.HandleCommand(context.Background(), "/score@WolfHunterBot 2h")
	assert.Contains(t, reply, `Unknown timeframe "2h"`)

	eng.errs[model.Timeframe4h] = fmt.Errorf("evaluate 4h: %w", model.ErrInsufficientHistory)
	reply = s.HandleCommand(context.Background(), "/score")
	assert.Contains(t, reply, "<b>1h</b>: 42")
	assert.Contains(t, reply, "<b>4h</b>: not enough candle history yet")

	reply = s.HandleCommand(context.Background(), "/score 4h")
	assert.Contains(t, reply, "Could not evaluate 4h: not enough candle history yet")
}

func TestHandleCommand_EscapesHTML(t *testing.T) {
	s, eng, _ := newTestScheduler(model.Timeframe1h)

	reply := s.HandleCommand(context.Background(), "/score <x")
	assert.Contains(t, reply, `Unknown timeframe "&lt;x"`)
	assert.NotContains(t, reply, "<x")

	eng.errs[model.Timeframe1h] = errors.New("upstream said <b>no</b> & quit")
	reply = s.HandleCommand(context.Background(), "/score 1h")
	assert.Contains(t, reply, "upstream said &lt;b&gt;no&lt;/b&gt; &amp; quit")
}

func TestHandleCommand_Refresh(t *testing.T) {
	s, eng, _ := newTestScheduler(model.Timeframe1h)

	assert.Contains(t, s.HandleCommand(context.Background(), "/refresh"), "Usage")
	assert.Empty(t, eng.invalidated)

	reply := s.HandleCommand(context.Background(), "/refresh 15m")
	assert.Contains(t, reply, "OKMUSDT 15m")
	assert.Equal(t, []model.Timeframe{model.Timeframe15m}, eng.invalidated)
}

func TestHandleCommand_Help(t *testing.T) {
	s, _, _ := newTestScheduler(model.Timeframe1h)
	for _, cmd := range []string{"/help", "/start", "hello", ""} {
		assert.Contains(t, s.HandleCommand(context.Background(), cmd), "Available commands", cmd)
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "market data is unavailable right now", describe(fmt.Errorf("x: %w", model.ErrDataUnavailable)))
	assert.Equal(t, "boom", describe(errors.New("boom")))
}

func TestRegisterAll_RejectsBadCron(t *testing.T) {
	s, _, _ := newTestScheduler(model.Timeframe1h)
	assert.Error(t, s.RegisterAll("not a cron"))
	assert.NoError(t, s.RegisterAll("0 */5 * * * *"))
}

func TestAlertState_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "alerts.json")

	s, eng, snd := newTestScheduler(model.Timeframe1h)
	s.StateFile = path
	require.NoError(t, s.LoadState())
	eng.set(model.Timeframe1h, 85)
	s.RunEvaluateNow()
	require.Len(t, snd.sent, 1)

	restarted, eng2, snd2 := newTestScheduler(model.Timeframe1h)
	restarted.StateFile = path
	require.NoError(t, restarted.LoadState())
	eng2.set(model.Timeframe1h, 90)
	restarted.RunEvaluateNow()
	assert.Empty(t, snd2.sent, "latched timeframe must not alert again after restart")

	eng2.set(model.Timeframe1h, 10)
	restarted.RunEvaluateNow()
	state, err := LoadAlertState(path)
	require.NoError(t, err)
	assert.False(t, state.Alerted[model.Timeframe1h])
}

func TestLoadAlertState_Missing(t *testing.T) {
	state, err := LoadAlertState(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Empty(t, state.Alerted)
}
