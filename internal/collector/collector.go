package collector

import (
	"context"
	"fmt"
	"log"
	"strings"

	"RetentionSentinel/internal/model"
)

// Filter drops orders that do not count as activity: cancelled or
// failed orders, failed payments and excluded sales channels.
type Filter struct {
	ExcludedOrderStatuses   []string
	ExcludedPaymentStatuses []string
	ExcludedChannels        []string // case-insensitive substrings
}

// DefaultFilter matches the exclusions applied to the order export.
func DefaultFilter() Filter {
	return Filter{
		ExcludedOrderStatuses:   []string{"CANCELLED", "ABANDONED", "FAILED", "WAITING"},
		ExcludedPaymentStatuses: []string{"CANCELLED", "ERROR"},
		ExcludedChannels:        []string{"trading"},
	}
}

// Keep reports whether o counts as an active order.
func (f Filter) Keep(o model.Order) bool {
	for _, s := range f.ExcludedOrderStatuses {
		if o.OrderStatus == s {
			return false
		}
	}
	for _, s := range f.ExcludedPaymentStatuses {
		if o.PaymentStatus == s {
			return false
		}
	}
	channel := strings.ToLower(o.Channel)
	for _, s := range f.ExcludedChannels {
		if s != "" && strings.Contains(channel, strings.ToLower(s)) {
			return false
		}
	}
	return true
}

// Stats describes one collection run.
type Stats struct {
	Source   string
	Rows     int // rows parsed by the source
	Invalid  int // rows the source skipped
	Filtered int // orders dropped by the filter
	Orders   int // orders in the resulting ledger
}

// Collector loads the order history and turns it into a ledger.
type Collector struct {
	Source Source
	Filter Filter
}

// NewCollector creates a new Collector.
func NewCollector(source Source, filter Filter) *Collector {
	return &Collector{Source: source, Filter: filter}
}

// Collect loads orders from the source, applies the filter and builds the
// ledger. Inconsistent records fail the whole run.
func (c *Collector) Collect(ctx context.Context) (*model.Ledger, Stats, error) {
	stats := Stats{Source: c.Source.Name()}

	batch, err := c.Source.Load(ctx)
	if err != nil {
		return nil, stats, fmt.Errorf("load orders from %s: %w", stats.Source, err)
	}
	stats.Rows = len(batch.Orders)
	stats.Invalid = batch.Invalid
	if batch.Invalid > 0 {
		log.Printf("[WARN] %s: skipped %d unparseable rows", stats.Source, batch.Invalid)
	}

	kept := make([]model.Order, 0, len(batch.Orders))
	for _, o := range batch.Orders {
		if c.Filter.Keep(o) {
			kept = append(kept, o)
		}
	}
	stats.Filtered = stats.Rows - len(kept)

	ledger, err := model.NewLedger(kept)
	if err != nil {
		return nil, stats, fmt.Errorf("build ledger: %w", err)
	}
	stats.Orders = ledger.Len()
	log.Printf("[INFO] %s: %d orders kept (%d filtered, %d invalid), %d customers",
		stats.Source, stats.Orders, stats.Filtered, stats.Invalid, len(ledger.Customers()))
	return ledger, stats, nil
}
