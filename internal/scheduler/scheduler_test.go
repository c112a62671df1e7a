package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"RetentionSentinel/internal/collector"
	"RetentionSentinel/internal/goals"
	"RetentionSentinel/internal/model"
	"RetentionSentinel/internal/recorder"
	"RetentionSentinel/internal/report"
)

type fakeSender struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, text)
	return nil
}

type fakeRecorder struct {
	runs []*recorder.RunReport
	err  error
}

func (f *fakeRecorder) RecordRun(run *recorder.RunReport) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.runs = append(f.runs, run)
	return "run-1", nil
}

func (f *fakeRecorder) Close() error { return nil }

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 12, 0, 0, 0, time.UTC)
}

var (
	june = model.YearMonth{Year: 2024, Month: time.June}
	july = model.YearMonth{Year: 2024, Month: time.July}
)

func orders() []model.Order {
	return []model.Order{
		{CustomerID: "1", CustomerName: "Le Bistrot", OrderDate: d(2024, 7, 3), Total: 250, FirstOrderDate: d(2024, 7, 3), Country: "FR", AccountManager: "anna@resto.fr"},
		{CustomerID: "2", CustomerName: "Chez Paul", OrderDate: d(2024, 6, 10), Total: 600, FirstOrderDate: d(2024, 3, 8), Country: "FR", AccountManager: "anna@resto.fr"},
		{CustomerID: "2", CustomerName: "Chez Paul", OrderDate: d(2024, 7, 11), Total: 400, FirstOrderDate: d(2024, 3, 8), Country: "FR", AccountManager: "anna@resto.fr"},
		{CustomerID: "3", CustomerName: "Da Mario", OrderDate: d(2024, 6, 20), Total: 1200, FirstOrderDate: d(2023, 1, 15), Country: "IT"},
		{CustomerID: "4", OrderDate: d(2024, 7, 1), Total: 90, OrderStatus: "CANCELLED", Country: "IT"},
	}
}

func newTestScheduler(t *testing.T) (*Scheduler, *fakeSender, *fakeRecorder) {
	t.Helper()
	store, err := goals.NewStore(filepath.Join(t.TempDir(), "goals.json"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Set("FR", "Acquisition", 3); err != nil {
		t.Fatal(err)
	}
	sender := &fakeSender{}
	rec := &fakeRecorder{}
	col := collector.NewCollector(&collector.StaticSource{Orders: orders()}, collector.DefaultFilter())
	now := func() time.Time { return d(2024, 7, 20) }
	s := NewScheduler(context.Background(), col, report.NewFacade(1, report.NewSnapshotCache()), store, sender, rec, now)
	return s, sender, rec
}

func TestRunNow_ComputesAndRecords(t *testing.T) {
	s, _, rec := newTestScheduler(t)
	res, err := s.RunNow(context.Background(), "once", july)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Retention) != DefaultWindowMonths*model.SegmentCount {
		t.Errorf("expected %d retention rows, got %d", DefaultWindowMonths*model.SegmentCount, len(res.Retention))
	}
	if first := res.Retention[0].Month; first != july.AddMonths(-3) {
		t.Errorf("window should start at %s, got %s", july.AddMonths(-3), first)
	}
	counts := res.Recommendations.CountByCategory()
	if counts[model.Reactivate] != 1 || counts[model.Upsell] != 1 {
		t.Errorf("unexpected categories: %v", counts)
	}
	if len(res.CountrySets) != 2 {
		t.Errorf("expected FR and IT slices, got %d", len(res.CountrySets))
	}
	if len(res.Goals) != 1 || res.Goals[0].Actual != 1 || res.Goals[0].Gap != 2 {
		t.Errorf("unexpected goals: %+v", res.Goals)
	}

	if len(rec.runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(rec.runs))
	}
	run := rec.runs[0]
	if run.Kind != "once" || run.Orders != 4 || !run.At.Equal(d(2024, 7, 20)) {
		t.Errorf("unexpected run header: %+v", run)
	}
	// Overall window plus two countries.
	if want := 3 * DefaultWindowMonths * model.SegmentCount; len(run.Retention) != want {
		t.Errorf("expected %d retention entries, got %d", want, len(run.Retention))
	}
	if len(run.Recommendations) != 3 || run.Recommendations[1].Scope != "country:FR" {
		t.Errorf("unexpected recommendation scopes: %+v", run.Recommendations)
	}
	if len(res.Roster) != 3 || res.Roster[2].ActiveInMonth {
		t.Errorf("unexpected roster: %+v", res.Roster)
	}
	// Customer 3 has no account manager.
	if want := 2 * DefaultWindowMonths * model.SegmentCount; len(res.ByManager) != want {
		t.Errorf("expected %d account manager rows, got %d", want, len(res.ByManager))
	}
	if res.ByRegion[0].Key != report.UnassignedKey {
		t.Errorf("orders without region should be unassigned, got %q", res.ByRegion[0].Key)
	}
	if len(res.Tables()) != 9 {
		t.Errorf("expected 9 export tables")
	}
}

func TestRunNow_RecorderFailureIsNotFatal(t *testing.T) {
	s, _, rec := newTestScheduler(t)
	rec.err = errors.New("disk full")
	if _, err := s.RunNow(context.Background(), "daily", july); err != nil {
		t.Errorf("recorder failure should only be logged, got %v", err)
	}
}

func TestRunNow_CollectError(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	s.Collector = collector.NewCollector(&collector.StaticSource{Err: errors.New("db down")}, collector.DefaultFilter())
	if _, err := s.RunNow(context.Background(), "daily", july); err == nil {
		t.Fatal("expected error")
	}
}

func TestDailyAndMonthlyTasks(t *testing.T) {
	s, sender, rec := newTestScheduler(t)

	s.dailyTask()
	if len(sender.msgs) != 2 || !strings.Contains(sender.msgs[0], "Retention ALL") || !strings.Contains(sender.msgs[1], "Recommendations ALL") {
		t.Fatalf("unexpected daily messages: %q", sender.msgs)
	}

	sender.msgs = nil
	s.monthlyTask()
	if got := rec.runs[len(rec.runs)-1]; got.Kind != "monthly" || got.Reference != june {
		t.Errorf("monthly close should cover the previous month, got %s %s", got.Kind, got.Reference)
	}
	// Digest, one summary per country, goals.
	if len(sender.msgs) != 4 || !strings.Contains(sender.msgs[3], "Goals") {
		t.Errorf("unexpected monthly messages: %d", len(sender.msgs))
	}
}

func TestReferenceMonth(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	if s.ReferenceMonth() != july {
		t.Errorf("expected clock month, got %s", s.ReferenceMonth())
	}
	s.Reference = june
	if s.ReferenceMonth() != june {
		t.Errorf("expected pinned month, got %s", s.ReferenceMonth())
	}
}

func TestHandleCommand(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	tests := []struct {
		cmd  string
		want string
	}{
		{"/retention", "Retention ALL"},
		{"/retention fr", "Retention FR"},
		{"/churn IT", "Reactivate / investigate churn: 1"},
		{"/goals", "Goals"},
		{"/churn ES", "No orders for country ES"},
		{"/portfolio ANNA@resto.fr", "Chez Paul"},
		{"/portfolio nobody@resto.fr", "No customers for nobody@resto.fr"},
		{"/portfolio", "Usage: /portfolio"},
		{"/client 2", "Spend fell from 600.00 in 2024-06 to 400.00 in 2024-07"},
		{"/client 3", "No order for 30 days"},
		{"/client 99", "No orders for customer 99 by 2024-07"},
		{"/client", "Usage: /client ID"},
		{"/weekly", "/retention [COUNTRY]"},
		{"hello", "/help"},
	}
	for _, tt := range tests {
		got := s.HandleCommand(tt.cmd)
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s: expected %q in reply:\n%s", tt.cmd, tt.want, got)
		}
	}
}

func TestBackfill(t *testing.T) {
	s, _, rec := newTestScheduler(t)
	n, err := s.Backfill(context.Background(), june.AddMonths(-2), july)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("expected 4 months, got %d", n)
	}
	run := rec.runs[len(rec.runs)-1]
	if run.Kind != "backfill" || run.Reference != july {
		t.Errorf("unexpected run: %s %s", run.Kind, run.Reference)
	}
	if want := 4 * 3 * model.SegmentCount; len(run.Retention) != want {
		t.Errorf("expected %d entries, got %d", want, len(run.Retention))
	}

	if _, err := s.Backfill(context.Background(), july, june); err == nil {
		t.Error("expected error for reversed range")
	}
}
