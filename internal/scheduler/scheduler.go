package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"sync"
	"time"

	"WolfHunter/internal/metrics"
	"WolfHunter/internal/model"
	"WolfHunter/internal/notifier"

	"github.com/robfig/cron/v3"
)

// Evaluator is the part of the engine the scheduler drives.
type Evaluator interface {
	Evaluate(ctx context.Context, tf model.Timeframe) (*model.Result, error)
	Invalidate(tf model.Timeframe)
}

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs periodic evaluations and answers chat commands.
type Scheduler struct {
	Cron       *cron.Cron
	Engine     Evaluator
	Notifier   Sender
	Symbol     string
	Timeframes []model.Timeframe
	Threshold  int
	StateFile  string // alert latch persistence, optional
	Now        func() time.Time
	Ctx        context.Context

	mu      sync.Mutex
	alerted map[model.Timeframe]bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, eng Evaluator, tn Sender,
	symbol string, timeframes []model.Timeframe, threshold int) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Engine:     eng,
		Notifier:   tn,
		Symbol:     symbol,
		Timeframes: timeframes,
		Threshold:  threshold,
		Now:        time.Now,
		Ctx:        ctx,
		alerted:    make(map[model.Timeframe]bool),
	}
}

// RegisterAll registers the evaluation task.
func (s *Scheduler) RegisterAll(evaluateCron string) error {
	if _, err := s.Cron.AddFunc(evaluateCron, s.evaluateTask); err != nil {
		return fmt.Errorf("register evaluate task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunEvaluateNow executes the evaluation task immediately (for RUN_ON_START).
func (s *Scheduler) RunEvaluateNow() {
	s.evaluateTask()
}

func (s *Scheduler) evaluateTask() {
	log.Printf("[INFO] evaluating %d timeframes", len(s.Timeframes))
	for _, tf := range s.Timeframes {
		res, err := s.Engine.Evaluate(s.Ctx, tf)
		if err != nil {
			log.Printf("[ERROR] evaluate %s: %v", tf, err)
			continue
		}
		s.checkAlert(res)
	}
}

// checkAlert sends one alert when a timeframe reaches the threshold and
// re-arms only after the score falls back below it. Stale results never alert.
func (s *Scheduler) checkAlert(res *model.Result) {
	if res.Stale {
		return
	}
	s.mu.Lock()
	wasAlerted := s.alerted[res.Timeframe]
	if res.BuyScore < s.Threshold {
		s.alerted[res.Timeframe] = false
		s.mu.Unlock()
		if wasAlerted {
			s.saveState()
		}
		return
	}
	s.mu.Unlock()
	if wasAlerted {
		return
	}

	log.Printf("[INFO] %s buy score %d reached threshold %d", res.Timeframe, res.BuyScore, s.Threshold)
	// Latch only once delivered; a failed send is retried on the next run.
	if !s.trySend(notifier.FormatAlert(res, s.Symbol, s.Threshold, s.Now())) {
		return
	}
	metrics.AlertsSent.WithLabelValues(res.Timeframe.String()).Inc()
	s.mu.Lock()
	s.alerted[res.Timeframe] = true
	s.mu.Unlock()
	s.saveState()
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp(s.Timeframes)
	}
	// Group chats address commands as /score@BotName.
	name, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	switch name {
	case "/score":
		if len(args) == 0 {
			return s.summary(ctx)
		}
		return s.evaluateOne(ctx, args[0], false)
	case "/refresh":
		if len(args) == 0 {
			return "Usage: /refresh &lt;timeframe&gt;"
		}
		return s.evaluateOne(ctx, args[0], true)
	default:
		return notifier.FormatHelp(s.Timeframes)
	}
}

func (s *Scheduler) evaluateOne(ctx context.Context, arg string, refresh bool) string {
	tf, err := model.ParseTimeframe(arg)
	if err != nil {
		return fmt.Sprintf("❌ Unknown timeframe \"%s\"\n\n%s", html.EscapeString(arg), notifier.FormatHelp(s.Timeframes))
	}
	if refresh {
		s.Engine.Invalidate(tf)
	}
	res, err := s.Engine.Evaluate(ctx, tf)
	if err != nil {
		return fmt.Sprintf("❌ Could not evaluate %s: %s", tf, describe(err))
	}
	return notifier.FormatEvaluation(res, s.Symbol, s.Now())
}

func (s *Scheduler) summary(ctx context.Context) string {
	var results []*model.Result
	failures := make(map[model.Timeframe]error)
	for _, tf := range s.Timeframes {
		res, err := s.Engine.Evaluate(ctx, tf)
		if err != nil {
			failures[tf] = errors.New(describe(err))
			continue
		}
		results = append(results, res)
	}
	return notifier.FormatSummary(s.Symbol, results, failures)
}

// describe turns an evaluation error into a short user-facing reason, safe for HTML replies.
func describe(err error) string {
	switch {
	case errors.Is(err, model.ErrInsufficientHistory):
		return "not enough candle history yet"
	case errors.Is(err, model.ErrDataUnavailable):
		return "market data is unavailable right now"
	case errors.Is(err, model.ErrInvalidTimeframe):
		return "unsupported timeframe"
	default:
		return html.EscapeString(err.Error())
	}
}

func (s *Scheduler) trySend(text string) bool {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
		return false
	}
	return true
}
