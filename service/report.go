package application

import (
	"booking_service/domain"
	"fmt"
	"sort"
	"time"
)

type MonthlyIncome struct {
	Month  string  `json:"month"`
	Year   int     `json:"year"`
	Number int     `json:"monthNumber"`
	Income float64 `json:"income"`
}

type StatusCounts struct {
	Confirmed int `json:"confirmed"`
	Pending   int `json:"pending"`
	Cancelled int `json:"cancelled"`
	Expired   int `json:"expired"`
}

type PackageCount struct {
	PackageName string `json:"packageName"`
	Count       int    `json:"count"`
}

type Dashboard struct {
	MonthlyIncome  []MonthlyIncome `json:"monthlyIncome"`
	TotalIncome    float64         `json:"totalIncome"`
	ConfirmedCount int             `json:"confirmedCount"`
	StatusCounts   StatusCounts    `json:"statusCounts"`
	PackageCounts  []PackageCount  `json:"packageCounts"`
	TotalBookings  int             `json:"totalBookings"`
}

type monthKey struct {
	year  int
	month time.Month
}

// BuildDashboard aggregates bookings into income, status and per package
// views. Confirmed bookings whose end date lies before now are reported as
// expired; income counts every confirmed booking, expired or not.
func BuildDashboard(bookings []*domain.Booking, now time.Time) Dashboard {
	dashboard := Dashboard{
		MonthlyIncome: []MonthlyIncome{},
		PackageCounts: []PackageCount{},
		TotalBookings: len(bookings),
	}

	income := make(map[monthKey]float64)
	packages := make(map[string]int)

	for _, booking := range bookings {
		if booking == nil {
			continue
		}

		switch booking.Status {
		case domain.Confirmed:
			start := booking.StartDate.UTC()
			income[monthKey{year: start.Year(), month: start.Month()}] += booking.TotalBudget
			dashboard.TotalIncome += booking.TotalBudget
			dashboard.ConfirmedCount++

			if booking.EndDate.Before(now) {
				dashboard.StatusCounts.Expired++
			} else {
				dashboard.StatusCounts.Confirmed++
			}
		case domain.Pending:
			dashboard.StatusCounts.Pending++
		case domain.Cancelled:
			dashboard.StatusCounts.Cancelled++
		}

		packages[booking.PackageName]++
	}

	keys := make([]monthKey, 0, len(income))
	for key := range income {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	for _, key := range keys {
		dashboard.MonthlyIncome = append(dashboard.MonthlyIncome, MonthlyIncome{
			Month:  MonthLabel(key.year, key.month),
			Year:   key.year,
			Number: int(key.month),
			Income: income[key],
		})
	}

	for name, count := range packages {
		dashboard.PackageCounts = append(dashboard.PackageCounts, PackageCount{PackageName: name, Count: count})
	}
	sort.Slice(dashboard.PackageCounts, func(i, j int) bool {
		a, b := dashboard.PackageCounts[i], dashboard.PackageCounts[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.PackageName < b.PackageName
	})

	return dashboard
}

// MonthLabel renders a month bucket as month/year, e.g. 1/2025.
func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%d/%d", int(month), year)
}
