package entity

import (
	"math"
	"strings"
	"time"
)

// DefaultCustomerName is used when checkout does not name a customer.
const DefaultCustomerName = "Walk-in Customer"

// BillReport is an invoice produced when a cart is checked out.
type BillReport struct {
	ID           int64
	CustomerName string
	Items        []BillItem
	Total        float64
	CreatedAt    time.Time
}

// BillItem is one priced line of a bill. Name and Price are captured at
// checkout so later catalog edits do not rewrite history.
type BillItem struct {
	ProductID int64
	Name      string
	Price     float64
	Quantity  int
	LineTotal float64
}

// NewBillReport builds a bill from items and computes line totals and Total.
func NewBillReport(customerName string, items []BillItem, now time.Time) *BillReport {
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		customerName = DefaultCustomerName
	}

	bill := &BillReport{
		CustomerName: customerName,
		Items:        make([]BillItem, 0, len(items)),
		CreatedAt:    now,
	}
	for _, it := range items {
		it.LineTotal = RoundCents(it.Price * float64(it.Quantity))
		bill.Items = append(bill.Items, it)
		bill.Total += it.LineTotal
	}
	bill.Total = RoundCents(bill.Total)
	return bill
}

// RoundCents rounds an amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
