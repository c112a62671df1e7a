package strategy

import (
	"math"
	"testing"
	"time"

	"RetentionSentinel/internal/model"
)

func TestClassifyTier_AllBoundaries(t *testing.T) {
	tests := []struct {
		spend float64
		tier  model.Tier
	}{
		{-50, model.Basic},
		{0, model.Basic},
		{500, model.Basic},
		{500.01, model.Silver},
		{1500, model.Silver},
		{1500.01, model.Gold},
		{2000, model.Gold},
		{2000.01, model.HighSpender},
		{1e9, model.HighSpender},
		{math.NaN(), model.Basic},
	}
	for _, tt := range tests {
		if got := ClassifyTier(tt.spend); got != tt.tier {
			t.Errorf("spend %.2f: expected %s, got %s", tt.spend, tt.tier, got)
		}
	}
}

func TestClassifyTier_Monotonic(t *testing.T) {
	prev := ClassifyTier(0)
	for x := 0.0; x <= 3000; x += 0.5 {
		cur := ClassifyTier(x)
		if cur < prev {
			t.Fatalf("tier decreased at %.2f: %s < %s", x, cur, prev)
		}
		prev = cur
	}
}

func TestClassifySegment_Boundaries(t *testing.T) {
	ref := model.YearMonth{Year: 2024, Month: time.July}
	tests := []struct {
		first string
		want  model.Segment
	}{
		{"2024-07", model.Acquisition},
		{"2024-06", model.NewlyReturning},
		{"2024-05", model.RecentlyActive},
		{"2024-04", model.RecentlyActive},
		{"2024-03", model.RecentlyActive},
		{"2024-02", model.RecentlyActive},
		{"2024-01", model.Established},
		{"2023-07", model.Established},
		{"2019-01", model.Established},
	}
	for _, tt := range tests {
		first, err := model.ParseYearMonth(tt.first)
		if err != nil {
			t.Fatal(err)
		}
		if got := ClassifySegment(first, ref); got != tt.want {
			t.Errorf("first %s: expected %s, got %s", tt.first, tt.want, got)
		}
	}
}

func TestClassifySegment_Partition(t *testing.T) {
	ref := model.YearMonth{Year: 2025, Month: time.March}
	counts := map[model.Segment]int{}
	for lag := 0; lag < 36; lag++ {
		seg := ClassifySegment(ref.AddMonths(-lag), ref)
		if seg < model.Acquisition || seg > model.Established {
			t.Fatalf("lag %d produced invalid segment %d", lag, seg)
		}
		counts[seg]++
	}
	if counts[model.Acquisition] != 1 || counts[model.NewlyReturning] != 1 || counts[model.RecentlyActive] != 4 {
		t.Errorf("unexpected window sizes: %v", counts)
	}
}

func TestCustomerMonths(t *testing.T) {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 9, 0, 0, 0, time.UTC) }
	l, err := model.NewLedger([]model.Order{
		{CustomerID: "2", CustomerName: "Chez Paul", OrderDate: d(2024, 6, 4), Total: 600, FirstOrderDate: d(2024, 3, 2)},
		{CustomerID: "2", OrderDate: d(2024, 7, 2), Total: 300, FirstOrderDate: d(2024, 3, 2)},
		{CustomerID: "2", OrderDate: d(2024, 7, 20), Total: 100, FirstOrderDate: d(2024, 3, 2)},
		{CustomerID: "1", OrderDate: d(2024, 7, 10), Total: 2500, FirstOrderDate: d(2024, 7, 10)},
		{CustomerID: "3", OrderDate: d(2024, 6, 15), Total: 900, FirstOrderDate: d(2023, 1, 3)},
	})
	if err != nil {
		t.Fatal(err)
	}
	ref := model.YearMonth{Year: 2024, Month: time.July}

	got := CustomerMonths(l, ref, 1)
	if len(got) != 2 {
		t.Fatalf("expected 2 active customers, got %d", len(got))
	}
	if got[0].CustomerID != "1" || got[0].Segment != model.Acquisition || got[0].Tier != model.HighSpender {
		t.Errorf("unexpected customer 1 row: %+v", got[0])
	}
	c2 := got[1]
	if c2.Revenue != 400 || c2.Orders != 2 || c2.Tier != model.Basic || c2.Segment != model.RecentlyActive {
		t.Errorf("unexpected customer 2 row: %+v", c2)
	}
	if c2.CustomerName != "Chez Paul" {
		t.Errorf("name not carried: %q", c2.CustomerName)
	}

	// Two-month trailing window includes June revenue but not June-only customers.
	wide := CustomerMonths(l, ref, 2)
	if len(wide) != 2 {
		t.Fatalf("window must not add inactive customers, got %d", len(wide))
	}
	if wide[1].Revenue != 1000 || wide[1].Tier != model.Silver {
		t.Errorf("unexpected windowed row: %+v", wide[1])
	}
}
