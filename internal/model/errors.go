package model

import (
	"fmt"
	"time"
)

// InconsistentDateError reports an order placed before its customer's
// recorded first order, which means the upstream export is corrupted.
type InconsistentDateError struct {
	CustomerID     string
	FirstOrderDate time.Time
	OrderDate      time.Time
}

func (e *InconsistentDateError) Error() string {
	return fmt.Sprintf("customer %s: first order %s is after order %s",
		e.CustomerID, e.FirstOrderDate.Format("2006-01-02"), e.OrderDate.Format("2006-01-02"))
}

// InvalidOrderError reports an order record missing a mandatory field.
type InvalidOrderError struct {
	Index  int
	Reason string
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("order #%d: %s", e.Index, e.Reason)
}
