package services

import (
	"testing"
	"time"

	"parfum/internal/models"
	"parfum/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func seedDelivered(t *testing.T, store *repositories.MemoryStore, deliveredAt time.Time, price int64, qty int, discount int64) {
	t.Helper()
	order := &models.Order{
		ProductID:      "11111111-1111-1111-1111-111111111111",
		CustomerID:     "cust-1",
		Quantity:       qty,
		Price:          price,
		CouponDiscount: discount,
		Status:         models.StatusDelivered,
		DeliveredAt:    &deliveredAt,
	}
	assert.NoError(t, store.CreateOrder(order))
}

func TestSalesReportBucketsByDay(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewReportService(store.Orders())

	day1 := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	seedDelivered(t, store, day1, 900, 2, 100)
	seedDelivered(t, store, day1, 500, 1, 0)
	seedDelivered(t, store, day2, 1000, 1, 0)

	// A cancelled order never counts.
	cancelled := &models.Order{Status: models.StatusCancelled, Price: 9999, Quantity: 1}
	assert.NoError(t, store.CreateOrder(cancelled))

	report, err := svc.Sales(
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		PeriodDay,
	)
	assert.NoError(t, err)
	assert.Len(t, report.Buckets, 2)

	assert.Equal(t, "2025-06-10", report.Buckets[0].Period)
	assert.Equal(t, 2, report.Buckets[0].Orders)
	assert.Equal(t, 3, report.Buckets[0].Units)
	assert.Equal(t, int64(2300), report.Buckets[0].Revenue)
	assert.Equal(t, int64(100), report.Buckets[0].CouponDiscount)

	assert.Equal(t, "2025-06-11", report.Buckets[1].Period)
	assert.Equal(t, int64(1000), report.Buckets[1].Revenue)

	assert.Equal(t, 3, report.Totals.Orders)
	assert.Equal(t, int64(3300), report.Totals.Revenue)
}

func TestSalesReportMonthAndYearBuckets(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewReportService(store.Orders())

	seedDelivered(t, store, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), 100, 1, 0)
	seedDelivered(t, store, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), 200, 1, 0)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	monthly, err := svc.Sales(from, to, PeriodMonth)
	assert.NoError(t, err)
	assert.Len(t, monthly.Buckets, 2)
	assert.Equal(t, "2025-01", monthly.Buckets[0].Period)

	yearly, err := svc.Sales(from, to, PeriodYear)
	assert.NoError(t, err)
	assert.Len(t, yearly.Buckets, 1)
	assert.Equal(t, "2025", yearly.Buckets[0].Period)
	assert.Equal(t, int64(300), yearly.Buckets[0].Revenue)
}

func TestSalesReportRejectsBadInput(t *testing.T) {
	svc := NewReportService(repositories.NewMemoryStore().Orders())
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Sales(from, from.AddDate(0, 1, 0), "fortnight")
	assert.Error(t, err)

	_, err = svc.Sales(from, from.AddDate(0, -1, 0), PeriodDay)
	assert.Error(t, err)
}
