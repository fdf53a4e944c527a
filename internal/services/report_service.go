package services

import (
	"fmt"
	"sort"
	"time"

	"parfum/internal/repositories"
)

// Report periods.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// ReportBucket is one aggregated slice of a sales report. Revenue counts
// the discounted line totals of delivered orders; fees and coupon
// discounts are reported separately so the columns reconcile.
type ReportBucket struct {
	Period         string `json:"period"`
	Orders         int    `json:"orders"`
	Units          int    `json:"units"`
	Revenue        int64  `json:"revenue"`
	CouponDiscount int64  `json:"coupon_discount"`
}

// SalesReport is a bucketed revenue summary over a date range.
type SalesReport struct {
	From    time.Time      `json:"from"`
	To      time.Time      `json:"to"`
	Buckets []ReportBucket `json:"buckets"`
	Totals  ReportBucket   `json:"totals"`
}

// ReportService aggregates delivered orders into sales reports. Bucketing
// happens in Go on the delivered timestamp, keeping the queries portable
// across database dialects.
type ReportService struct {
	orderRepo repositories.OrderRepository
}

// NewReportService creates a new ReportService.
func NewReportService(orderRepo repositories.OrderRepository) *ReportService {
	return &ReportService{orderRepo: orderRepo}
}

// Sales builds a report of delivered orders between from and to,
// bucketed by the given period (day, week, month or year).
func (s *ReportService) Sales(from, to time.Time, period string) (*SalesReport, error) {
	switch period {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
	default:
		return nil, fmt.Errorf("unknown report period: %s", period)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("report range is inverted: %s is after %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	orders, err := s.orderRepo.DeliveredBetween(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivered orders: %w", err)
	}

	byKey := make(map[string]*ReportBucket)
	report := &SalesReport{From: from, To: to}
	for _, order := range orders {
		if order.DeliveredAt == nil {
			continue
		}
		key := bucketKey(*order.DeliveredAt, period)
		bucket, ok := byKey[key]
		if !ok {
			bucket = &ReportBucket{Period: key}
			byKey[key] = bucket
		}
		bucket.Orders++
		bucket.Units += order.Quantity
		bucket.Revenue += order.LineTotal()
		bucket.CouponDiscount += order.CouponDiscount

		report.Totals.Orders++
		report.Totals.Units += order.Quantity
		report.Totals.Revenue += order.LineTotal()
		report.Totals.CouponDiscount += order.CouponDiscount
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		report.Buckets = append(report.Buckets, *byKey[key])
	}
	return report, nil
}

// bucketKey formats a timestamp into its period label. Labels sort
// lexicographically in chronological order.
func bucketKey(t time.Time, period string) string {
	switch period {
	case PeriodDay:
		return t.Format("2006-01-02")
	case PeriodWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case PeriodMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006")
	}
}
