package http_test

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
	"github.com/vasiliy-maslov/marketplace-service/internal/report"
)

func TestDashboardHandler_Stats(t *testing.T) {
	f := newFixture(t)
	f.reports.On("DashboardStats", mock.Anything, int64(2), "", "week").Return(&report.SellerDashboard{
		Views: 40, NewOrders: 3, Revenue: decimal.RequireFromString("75.25"), Period: report.PeriodWeek,
	}, nil).Once()
	f.reports.On("DashboardStats", mock.Anything, int64(2), "buyer", "").
		Return(nil, apperr.New(apperr.ErrForbidden, "Dashboard statistics are only available to sellers")).Once()

	rr := f.do(t, http.MethodGet, "/dashboard/stats?user_id=2&period=week", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"views":40,"new_orders":3,"revenue":75.25,"period":"week"}`, rr.Body.String())

	rr = f.do(t, http.MethodGet, "/dashboard/stats?user_id=2&role=buyer", nil)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDashboardHandler_PeriodStats(t *testing.T) {
	f := newFixture(t)
	f.reports.On("BuyerPeriodStats", mock.Anything, int64(1), "month").
		Return(&report.BuyerPeriod{Orders: 2, Revenue: decimal.RequireFromString("40")}, nil).Once()
	f.reports.On("BuyerPeriodStats", mock.Anything, int64(1), "year").
		Return(nil, apperr.New(apperr.ErrInvalidInput, `period must be "week" or "month"`)).Once()

	rr := f.do(t, http.MethodGet, "/dashboard/stats/period?user_id=1&period=month", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"orders":2,"revenue":40}`, rr.Body.String())

	rr = f.do(t, http.MethodGet, "/dashboard/stats/period?user_id=1&period=year", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
