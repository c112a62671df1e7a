package model

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestNewLedger_DerivesDates(t *testing.T) {
	l, err := NewLedger([]Order{
		{CustomerID: "b", OrderDate: day(2024, 6, 3), Total: 100, FirstOrderDate: day(2024, 3, 1)},
		{CustomerID: "b", OrderDate: day(2024, 7, 9), Total: 50, FirstOrderDate: day(2024, 3, 1)},
		{CustomerID: "a", OrderDate: day(2024, 7, 1), Total: -20},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := l.Customers(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("customers = %v", got)
	}
	fm, _ := l.FirstOrderMonth("b")
	if fm.String() != "2024-03" {
		t.Errorf("first order month of b = %s", fm)
	}
	// a carries no first-order date: fall back to earliest order.
	fa, _ := l.FirstOrderMonth("a")
	if fa.String() != "2024-07" {
		t.Errorf("first order month of a = %s", fa)
	}
	last, _ := l.LastOrder("b")
	if !last.Equal(day(2024, 7, 9)) {
		t.Errorf("last order of b = %v", last)
	}
	for _, o := range l.Orders() {
		if o.Total < 0 {
			t.Errorf("negative total kept: %v", o.Total)
		}
	}
}

func TestNewLedger_RejectsFirstOrderAfterOrder(t *testing.T) {
	_, err := NewLedger([]Order{
		{CustomerID: "x", OrderDate: day(2024, 5, 1), FirstOrderDate: day(2024, 6, 1)},
	})
	var ide *InconsistentDateError
	if !errors.As(err, &ide) {
		t.Fatalf("expected InconsistentDateError, got %v", err)
	}
	if ide.CustomerID != "x" {
		t.Errorf("customer = %q", ide.CustomerID)
	}
}

func TestNewLedger_RejectsOrderBeforeCarriedFirstOrder(t *testing.T) {
	_, err := NewLedger([]Order{
		{CustomerID: "x", OrderDate: day(2024, 6, 3), FirstOrderDate: day(2024, 3, 1)},
		{CustomerID: "x", OrderDate: day(2024, 1, 15)},
	})
	var ide *InconsistentDateError
	if !errors.As(err, &ide) {
		t.Fatalf("expected InconsistentDateError, got %v", err)
	}
	if ide.CustomerID != "x" || !ide.OrderDate.Equal(day(2024, 1, 15)) {
		t.Errorf("unexpected error detail: %+v", ide)
	}
}

func TestNewLedger_MixedRecordsKeepCarriedFirstOrder(t *testing.T) {
	l, err := NewLedger([]Order{
		{CustomerID: "x", OrderDate: day(2024, 6, 3)},
		{CustomerID: "x", OrderDate: day(2024, 4, 2), FirstOrderDate: day(2024, 1, 20)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm, _ := l.FirstOrderMonth("x"); fm.String() != "2024-01" {
		t.Errorf("first order month = %s", fm)
	}
}

func TestNewLedger_NormalizesCountry(t *testing.T) {
	l, err := NewLedger([]Order{
		{CustomerID: "x", OrderDate: day(2024, 6, 3), Country: " fr"},
		{CustomerID: "y", OrderDate: day(2024, 6, 4), Country: "Fr"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range l.Orders() {
		if o.Country != "FR" {
			t.Errorf("country = %q", o.Country)
		}
	}
	if parts := l.Partition(func(o Order) string { return o.Country }); len(parts) != 1 {
		t.Errorf("expected one country slice, got %d", len(parts))
	}
}

func TestNewLedger_SameDayIsConsistent(t *testing.T) {
	o := day(2024, 5, 1)
	_, err := NewLedger([]Order{
		{CustomerID: "x", OrderDate: o, FirstOrderDate: o.Add(3 * time.Hour)},
	})
	if err != nil {
		t.Fatalf("same-day first order must be accepted: %v", err)
	}
}

func TestNewLedger_RejectsMissingFields(t *testing.T) {
	var ioe *InvalidOrderError
	if _, err := NewLedger([]Order{{OrderDate: day(2024, 1, 1)}}); !errors.As(err, &ioe) {
		t.Errorf("expected InvalidOrderError for empty id, got %v", err)
	}
	if _, err := NewLedger([]Order{{CustomerID: "x"}}); !errors.As(err, &ioe) {
		t.Errorf("expected InvalidOrderError for zero date, got %v", err)
	}
}

func TestPartition_KeepsGlobalFirstOrder(t *testing.T) {
	l, err := NewLedger([]Order{
		{CustomerID: "c", OrderDate: day(2023, 1, 5), Country: "FR", FirstOrderDate: day(2023, 1, 5)},
		{CustomerID: "c", OrderDate: day(2024, 7, 5), Country: "BE", FirstOrderDate: day(2023, 1, 5)},
	})
	if err != nil {
		t.Fatal(err)
	}
	parts := l.Partition(func(o Order) string { return o.Country })
	be := parts["BE"]
	if be == nil || be.Len() != 1 {
		t.Fatalf("unexpected BE part: %+v", be)
	}
	fm, _ := be.FirstOrderMonth("c")
	if fm.String() != "2023-01" {
		t.Errorf("BE slice lost global first order month: %s", fm)
	}
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := Order{CustomerID: "a", OrderDate: day(2024, 1, 1), Total: 10}
	b := Order{CustomerID: "b", OrderDate: day(2024, 1, 2), Total: 20}
	l1, _ := NewLedger([]Order{a, b})
	l2, _ := NewLedger([]Order{b, a})
	if l1.Fingerprint() != l2.Fingerprint() {
		t.Error("fingerprint depends on input order")
	}
	b.Total = 21
	l3, _ := NewLedger([]Order{a, b})
	if l1.Fingerprint() == l3.Fingerprint() {
		t.Error("fingerprint ignores totals")
	}
}
