package report

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
)

// SellerSummary is the lifetime activity shown on a seller's profile.
type SellerSummary struct {
	Products  int             `db:"products"`
	Orders    int             `db:"orders"`
	Completed int             `db:"completed"`
	Revenue   decimal.Decimal `db:"revenue"`
}

// SellerDashboard covers one period of a seller's sales. Views are lifetime.
type SellerDashboard struct {
	Views     int             `db:"views"`
	NewOrders int             `db:"new_orders"`
	Revenue   decimal.Decimal `db:"revenue"`
	Period    Period          `db:"-"`
}

type BuyerPeriod struct {
	Orders  int             `db:"orders"`
	Revenue decimal.Decimal `db:"revenue"`
}

type AdminStats struct {
	GMV             decimal.Decimal `db:"gmv"`
	DAU             int             `db:"dau"`
	MAU             int             `db:"mau"`
	PendingProducts int             `db:"pending_products"`
}

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// days is how far back a period reaches from today.
func (p Period) days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	}
	return 0
}

// ParseDashboardPeriod defaults to today. Unknown values are treated as
// today as well.
func ParseDashboardPeriod(s string) Period {
	switch p := Period(s); p {
	case PeriodWeek, PeriodMonth:
		return p
	}
	return PeriodToday
}

// ParseTrendPeriod accepts only week and month.
func ParseTrendPeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodWeek, PeriodMonth:
		return p, nil
	}
	return "", apperr.New(apperr.ErrInvalidInput, "period must be \"week\" or \"month\"")
}

// Window is a half-open time range [From, To). Nil bounds are open.
type Window struct {
	From *time.Time
	To   *time.Time
}

// dashboardWindow spans from the start of the local day p.days() ago to the
// end of today in loc.
func dashboardWindow(p Period, now time.Time, loc *time.Location) Window {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	from := today.AddDate(0, 0, -p.days())
	to := today.AddDate(0, 0, 1)
	return Window{From: &from, To: &to}
}

// dateWindow reads YYYY-MM-DD bounds in loc; the end date is inclusive.
// Unparsable values leave that side open.
func dateWindow(start, end string, loc *time.Location) Window {
	var w Window
	if d, err := time.ParseInLocation(time.DateOnly, start, loc); err == nil {
		w.From = &d
	}
	if d, err := time.ParseInLocation(time.DateOnly, end, loc); err == nil {
		next := d.AddDate(0, 0, 1)
		w.To = &next
	}
	return w
}
