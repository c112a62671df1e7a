package model

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"
	"strings"
	"time"
)

// Ledger is a validated, read-only set of orders with per-customer
// derived dates. Build one with NewLedger; never mutate the slices it returns.
type Ledger struct {
	orders      []Order
	firstOrder  map[string]time.Time
	lastOrder   map[string]time.Time
	customers   []string
	fingerprint string
}

// NewLedger validates orders and derives each customer's first and last
// order dates. Negative totals are clamped to zero and country codes are
// upper-cased. The first-order date of a customer is the earliest
// first-order date carried by its records, or its earliest order date when
// no record carries one. A carried first-order date later than any of the
// customer's orders is an *InconsistentDateError.
func NewLedger(orders []Order) (*Ledger, error) {
	l := &Ledger{
		orders:     make([]Order, 0, len(orders)),
		firstOrder: make(map[string]time.Time),
		lastOrder:  make(map[string]time.Time),
	}
	earliest := make(map[string]time.Time)

	for i, o := range orders {
		if o.CustomerID == "" {
			return nil, &InvalidOrderError{Index: i, Reason: "empty customer id"}
		}
		if o.OrderDate.IsZero() {
			return nil, &InvalidOrderError{Index: i, Reason: "missing order date"}
		}
		if !o.FirstOrderDate.IsZero() && dateOnly(o.FirstOrderDate).After(dateOnly(o.OrderDate)) {
			return nil, &InconsistentDateError{
				CustomerID:     o.CustomerID,
				FirstOrderDate: o.FirstOrderDate,
				OrderDate:      o.OrderDate,
			}
		}
		if o.Total < 0 || math.IsNaN(o.Total) {
			o.Total = 0
		}
		o.Country = strings.ToUpper(strings.TrimSpace(o.Country))

		if cur, ok := earliest[o.CustomerID]; !ok || o.OrderDate.Before(cur) {
			earliest[o.CustomerID] = o.OrderDate
		}
		if cur, ok := l.lastOrder[o.CustomerID]; !ok || o.OrderDate.After(cur) {
			l.lastOrder[o.CustomerID] = o.OrderDate
		}
		if !o.FirstOrderDate.IsZero() {
			if cur, ok := l.firstOrder[o.CustomerID]; !ok || o.FirstOrderDate.Before(cur) {
				l.firstOrder[o.CustomerID] = o.FirstOrderDate
			}
		}
		l.orders = append(l.orders, o)
	}

	for id := range earliest {
		l.customers = append(l.customers, id)
	}
	sort.Strings(l.customers)
	for _, id := range l.customers {
		t := earliest[id]
		first, ok := l.firstOrder[id]
		if !ok {
			l.firstOrder[id] = t
			continue
		}
		if dateOnly(first).After(dateOnly(t)) {
			return nil, &InconsistentDateError{CustomerID: id, FirstOrderDate: first, OrderDate: t}
		}
	}
	l.fingerprint = fingerprint(l.orders)
	return l, nil
}

// Len returns the number of orders.
func (l *Ledger) Len() int { return len(l.orders) }

// Orders returns every order in ingestion order.
func (l *Ledger) Orders() []Order { return l.orders }

// Customers returns every distinct customer id, sorted.
func (l *Ledger) Customers() []string { return l.customers }

// FirstOrderDate returns the customer's first-ever order date.
func (l *Ledger) FirstOrderDate(id string) (time.Time, bool) {
	t, ok := l.firstOrder[id]
	return t, ok
}

// FirstOrderMonth returns the month of the customer's first-ever order.
func (l *Ledger) FirstOrderMonth(id string) (YearMonth, bool) {
	t, ok := l.firstOrder[id]
	if !ok {
		return YearMonth{}, false
	}
	return MonthOf(t), true
}

// LastOrder returns the customer's most recent order date across all time.
func (l *Ledger) LastOrder(id string) (time.Time, bool) {
	t, ok := l.lastOrder[id]
	return t, ok
}

// InMonth returns the orders placed within ym.
func (l *Ledger) InMonth(ym YearMonth) []Order {
	var out []Order
	for _, o := range l.orders {
		if ym.Contains(o.OrderDate) {
			out = append(out, o)
		}
	}
	return out
}

// ActiveIn returns the set of customers with at least one order in ym.
func (l *Ledger) ActiveIn(ym YearMonth) map[string]struct{} {
	out := make(map[string]struct{})
	for _, o := range l.orders {
		if ym.Contains(o.OrderDate) {
			out[o.CustomerID] = struct{}{}
		}
	}
	return out
}

// Filter returns a new ledger holding the orders keep accepts. Derived
// first-order dates are taken from the parent so a slice never makes an
// old customer look newly acquired.
func (l *Ledger) Filter(keep func(Order) bool) *Ledger {
	sub := make([]Order, 0)
	for _, o := range l.orders {
		if keep(o) {
			sub = append(sub, o)
		}
	}
	return l.derive(sub)
}

// Partition splits the ledger by key. Each part keeps the parent's
// per-customer first-order dates.
func (l *Ledger) Partition(key func(Order) string) map[string]*Ledger {
	buckets := make(map[string][]Order)
	for _, o := range l.orders {
		k := key(o)
		buckets[k] = append(buckets[k], o)
	}
	out := make(map[string]*Ledger, len(buckets))
	for k, orders := range buckets {
		out[k] = l.derive(orders)
	}
	return out
}

func (l *Ledger) derive(orders []Order) *Ledger {
	sub := &Ledger{
		orders:     orders,
		firstOrder: make(map[string]time.Time),
		lastOrder:  make(map[string]time.Time),
	}
	for _, o := range orders {
		if _, seen := sub.firstOrder[o.CustomerID]; !seen {
			sub.firstOrder[o.CustomerID] = l.firstOrder[o.CustomerID]
			sub.customers = append(sub.customers, o.CustomerID)
		}
		if cur, ok := sub.lastOrder[o.CustomerID]; !ok || o.OrderDate.After(cur) {
			sub.lastOrder[o.CustomerID] = o.OrderDate
		}
	}
	sort.Strings(sub.customers)
	sub.fingerprint = fingerprint(orders)
	return sub
}

// Fingerprint is a content hash of the orders, independent of their order.
func (l *Ledger) Fingerprint() string { return l.fingerprint }

func fingerprint(orders []Order) string {
	keys := make([]string, len(orders))
	buf := make([]byte, 8)
	for i, o := range orders {
		binary.BigEndian.PutUint64(buf, math.Float64bits(o.Total))
		keys[i] = o.CustomerID + "|" + o.OrderDate.UTC().Format(time.RFC3339Nano) + "|" +
			o.FirstOrderDate.UTC().Format(time.RFC3339Nano) + "|" + string(buf) + "|" +
			o.Country + "|" + o.Region + "|" + o.AccountManager
	}
	sort.Strings(keys)
	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
