package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"qrmenu/pkg/orderflow"
)

func fixture(now time.Time) []Order {
	yesterday := now.AddDate(0, 0, -1)
	return []Order{
		{ID: "a", Total: 1000, Status: orderflow.StatusCompleted, CreatedAt: now},
		{ID: "b", Total: 500, Status: orderflow.StatusCancelled, CreatedAt: now},
		{ID: "c", Total: 2000, Status: orderflow.StatusPending, CreatedAt: yesterday},
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)
	orders := fixture(now)

	assert.Equal(t, 1000.0, TodayRevenue(orders, now))
	assert.Equal(t, 1000.0, AvgOrderValue(orders))
	assert.Equal(t, 1, CountByStatus(orders, orderflow.StatusCancelled))

	s := Summarize(orders, now)
	assert.Equal(t, 1000.0, s.TodayRevenue)
	assert.Equal(t, 1, s.TodayOrders)
	assert.Equal(t, 1000.0, s.AvgOrderValue)
	assert.Equal(t, 1, s.CompletedCount)
	assert.Equal(t, 3, s.TotalOrders)
	assert.Equal(t, 1, s.CountByStatus[orderflow.StatusPending])
	assert.Equal(t, 0, s.CountByStatus[orderflow.StatusReady])
}

func TestAvgOrderValue_NoCompleted(t *testing.T) {
	orders := []Order{{Total: 700, Status: orderflow.StatusPending}}
	assert.Equal(t, 0.0, AvgOrderValue(orders))
	assert.Equal(t, 0.0, AvgOrderValue(nil))
}

func TestAvgOrderValue_Mean(t *testing.T) {
	orders := []Order{
		{Total: 1000, Status: orderflow.StatusCompleted},
		{Total: 2000, Status: orderflow.StatusCompleted},
		{Total: 9000, Status: orderflow.StatusCancelled},
	}
	assert.Equal(t, 1500.0, AvgOrderValue(orders))
}

func TestToday_UsesLocationOfNow(t *testing.T) {
	belgrade := time.FixedZone("CET", 3600)
	now := time.Date(2026, 3, 14, 0, 30, 0, 0, belgrade)
	// 23:45 UTC on the 13th is 00:45 on the 14th in CET.
	created := time.Date(2026, 3, 13, 23, 45, 0, 0, time.UTC)
	orders := []Order{{Total: 300, Status: orderflow.StatusReady, CreatedAt: created}}

	assert.Len(t, Today(orders, now), 1)
	assert.Len(t, Today(orders, now.In(time.UTC).Add(-2*time.Hour)), 1)
	assert.Empty(t, Today(orders, now.AddDate(0, 0, 1)))
}

func TestFilterActive_LeavesAggregatesAlone(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)
	orders := fixture(now)

	active := FilterActive(orders, func(o Order) orderflow.Status { return o.Status })
	assert.Len(t, active, 1)
	assert.Equal(t, "c", active[0].ID)

	assert.Len(t, orders, 3)
	assert.Equal(t, 1000.0, Summarize(orders, now).TodayRevenue)
}
