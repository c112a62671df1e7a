package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"RetentionSentinel/internal/collector"
	"RetentionSentinel/internal/goals"
	"RetentionSentinel/internal/model"
	"RetentionSentinel/internal/notifier"
	"RetentionSentinel/internal/recorder"
	"RetentionSentinel/internal/report"
)

// DefaultWindowMonths is the length of the rolling retention window.
const DefaultWindowMonths = 4

// ErrNoLedger is returned when a task needs data before any load succeeded.
var ErrNoLedger = errors.New("no order history loaded")

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks and the bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Facade    *report.Facade
	Goals     *goals.Store
	Notifier  Sender // nil disables notifications
	Recorder  recorder.Recorder
	Ctx       context.Context

	// Now is the clock; Reference, when set, pins the reference month.
	Now          func() time.Time
	Reference    model.YearMonth
	WindowMonths int
	// Progress receives the backfill progress bar; nil discards it.
	Progress io.Writer

	mu     sync.RWMutex
	ledger *model.Ledger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, facade *report.Facade, gs *goals.Store, sender Sender, rec recorder.Recorder, now func() time.Time) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Collector:    col,
		Facade:       facade,
		Goals:        gs,
		Notifier:     sender,
		Recorder:     rec,
		Ctx:          ctx,
		Now:          now,
		WindowMonths: DefaultWindowMonths,
	}
}

// RegisterAll registers the daily refresh and the monthly close.
func (s *Scheduler) RegisterAll(dailyCron, monthlyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.Cron.AddFunc(monthlyCron, s.monthlyTask); err != nil {
		return fmt.Errorf("register monthly task: %w", err)
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

// ReferenceMonth returns the pinned reference month or the current month.
func (s *Scheduler) ReferenceMonth() model.YearMonth {
	if !s.Reference.IsZero() {
		return s.Reference
	}
	return model.MonthOf(s.Now())
}

func (s *Scheduler) windowMonths() int {
	if s.WindowMonths < 1 {
		return DefaultWindowMonths
	}
	return s.WindowMonths
}

// Refresh reloads the order history. On failure the previous ledger is kept.
func (s *Scheduler) Refresh(ctx context.Context) (*model.Ledger, error) {
	l, _, err := s.Collector.Collect(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.ledger = l
	s.mu.Unlock()
	if s.Facade.Cache != nil {
		s.Facade.Cache.Clear()
	}
	return l, nil
}

// Ledger returns the last loaded ledger, loading it on first use.
func (s *Scheduler) Ledger(ctx context.Context) (*model.Ledger, error) {
	s.mu.RLock()
	l := s.ledger
	s.mu.RUnlock()
	if l != nil {
		return l, nil
	}
	if s.Collector == nil {
		return nil, ErrNoLedger
	}
	return s.Refresh(ctx)
}

// RunNow refreshes the data, computes ref, records the run and returns the
// result.
func (s *Scheduler) RunNow(ctx context.Context, kind string, ref model.YearMonth) (*Result, error) {
	l, err := s.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	res, err := s.Compute(ctx, l, ref)
	if err != nil {
		return nil, err
	}
	run := res.runReport(kind, l.Len())
	run.At = s.Now()
	id, err := s.Recorder.RecordRun(run)
	if err != nil {
		log.Printf("[ERROR] record %s run: %v", kind, err)
	} else {
		log.Printf("[INFO] %s run %s recorded for %s", kind, id, ref)
	}
	return res, nil
}

func (s *Scheduler) dailyTask() {
	log.Println("[INFO] running daily refresh")
	ref := s.ReferenceMonth()
	res, err := s.RunNow(s.Ctx, "daily", ref)
	if err != nil {
		log.Printf("[ERROR] daily refresh: %v", err)
		s.trySend(fmt.Sprintf("❌ Daily refresh failed: %v", err))
		return
	}
	s.trySend(notifier.FormatRetentionDigest(recorder.ScopeAll, res.Snapshot, res.Previous))
	s.trySend(notifier.FormatRecommendationSummary(recorder.ScopeAll, res.Recommendations))
}

func (s *Scheduler) monthlyTask() {
	log.Println("[INFO] running monthly close")
	ref := s.ReferenceMonth().AddMonths(-1)
	res, err := s.RunNow(s.Ctx, "monthly", ref)
	if err != nil {
		log.Printf("[ERROR] monthly close: %v", err)
		s.trySend(fmt.Sprintf("❌ Monthly close failed: %v", err))
		return
	}
	s.trySend(notifier.FormatRetentionDigest(recorder.ScopeAll, res.Snapshot, res.Previous))
	for _, key := range sortedSetKeys(res.CountrySets) {
		s.trySend(notifier.FormatRecommendationSummary(key, res.CountrySets[key]))
	}
	s.trySend(notifier.FormatGoalGaps(ref, res.Goals))
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

func sortedSetKeys(m map[string]*model.RecommendationSet) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
