package model

import "time"

// Order is one purchase transaction as ingested from the order history.
type Order struct {
	CustomerID     string
	CustomerName   string
	OrderDate      time.Time
	Total          float64
	OrderStatus    string
	PaymentStatus  string
	Channel        string
	FirstOrderDate time.Time
	AccountManager string
	Country        string
	Region         string // optional, empty when the source has no region column
}

// Month returns the month the order was placed in.
func (o Order) Month() YearMonth { return MonthOf(o.OrderDate) }
