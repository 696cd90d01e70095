// Package dashboard derives the owner dashboard views from a loaded order
// set. Nothing here is persisted; every figure is recomputed on demand.
package dashboard

import (
	"time"

	"qrmenu/pkg/cart"
	"qrmenu/pkg/orderflow"
)

// Order is the slice of an order the dashboard needs.
type Order struct {
	ID          string           `json:"id"`
	Status      orderflow.Status `json:"status"`
	Total       float64          `json:"total"`
	TableNumber *int             `json:"table_number"`
	CreatedAt   time.Time        `json:"created_at"`
}

type Summary struct {
	TodayRevenue   float64                  `json:"today_revenue"`
	TodayOrders    int                      `json:"today_orders"`
	AvgOrderValue  float64                  `json:"avg_order_value"`
	CompletedCount int                      `json:"completed_count"`
	CountByStatus  map[orderflow.Status]int `json:"count_by_status"`
	TotalOrders    int                      `json:"total_orders"`
	ComputedAt     time.Time                `json:"computed_at"`
}

func NonCancelled(orders []Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.Status != orderflow.StatusCancelled {
			out = append(out, o)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Today keeps the non-cancelled orders created on now's calendar day, in
// now's location.
func Today(orders []Order, now time.Time) []Order {
	out := make([]Order, 0)
	for _, o := range NonCancelled(orders) {
		if sameDay(o.CreatedAt.In(now.Location()), now) {
			out = append(out, o)
		}
	}
	return out
}

func TodayRevenue(orders []Order, now time.Time) float64 {
	var sum float64
	for _, o := range Today(orders, now) {
		sum += o.Total
	}
	return cart.RoundCents(sum)
}

func Completed(orders []Order) []Order {
	out := make([]Order, 0)
	for _, o := range NonCancelled(orders) {
		if o.Status == orderflow.StatusCompleted {
			out = append(out, o)
		}
	}
	return out
}

// AvgOrderValue is the mean total of completed orders, 0 when there are none.
func AvgOrderValue(orders []Order) float64 {
	completed := Completed(orders)
	if len(completed) == 0 {
		return 0
	}
	var sum float64
	for _, o := range completed {
		sum += o.Total
	}
	return cart.RoundCents(sum / float64(len(completed)))
}

// CountByStatus counts over the full set, cancelled included.
func CountByStatus(orders []Order, status orderflow.Status) int {
	n := 0
	for _, o := range orders {
		if o.Status == status {
			n++
		}
	}
	return n
}

// FilterActive is the list-view toggle: it hides completed and cancelled
// orders. Aggregates never go through it.
func FilterActive[T any](orders []T, status func(T) orderflow.Status) []T {
	out := make([]T, 0, len(orders))
	for _, o := range orders {
		if !status(o).Terminal() {
			out = append(out, o)
		}
	}
	return out
}

func Summarize(orders []Order, now time.Time) Summary {
	counts := make(map[orderflow.Status]int, len(orderflow.AllStatuses))
	for _, s := range orderflow.AllStatuses {
		counts[s] = CountByStatus(orders, s)
	}
	return Summary{
		TodayRevenue:   TodayRevenue(orders, now),
		TodayOrders:    len(Today(orders, now)),
		AvgOrderValue:  AvgOrderValue(orders),
		CompletedCount: len(Completed(orders)),
		CountByStatus:  counts,
		TotalOrders:    len(orders),
		ComputedAt:     now,
	}
}
