package http_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/marketplace-service/internal/account"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
	"github.com/vasiliy-maslov/marketplace-service/internal/catalog"
	handler "github.com/vasiliy-maslov/marketplace-service/internal/handler/http"
	"github.com/vasiliy-maslov/marketplace-service/internal/paging"
	"github.com/vasiliy-maslov/marketplace-service/internal/report"
)

func TestAdminHandler_Stats(t *testing.T) {
	f := newFixture(t)
	f.reports.On("AdminStats", mock.Anything, "2024-01-01", "2024-01-31").Return(&report.AdminStats{
		GMV: decimal.RequireFromString("1250.50"), DAU: 3, MAU: 10, PendingProducts: 2,
	}, nil).Once()

	rr := f.do(t, http.MethodGet, "/admin/stats?start_date=2024-01-01&end_date=2024-01-31", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"gmv":1250.5,"dau":3,"mau":10,"pending_products":2}`, rr.Body.String())
}

func TestAdminHandler_ListProducts(t *testing.T) {
	f := newFixture(t)
	p := sampleSummary()
	p.Status = catalog.StatusWaitingForApprove
	p.CreatedAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	f.catalog.On("ListForModeration", mock.Anything, catalog.ModerationFilter{
		Status: catalog.StatusWaitingForApprove,
		Page:   paging.Params{Page: 2, PerPage: 10},
	}).Return(&catalog.ModerationPage{
		Products:   []catalog.ProductSummary{p},
		Total:      11,
		Page:       2,
		TotalPages: 2,
	}, nil).Once()

	rr := f.do(t, http.MethodGet, "/admin/products?page=2&per_page=10", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	got := decode[handler.ModerationPageResponse](t, rr)
	want := handler.ModerationPageResponse{
		Products: []handler.ModerationProductResponse{{
			ID:          5,
			Name:        "Headphones",
			Price:       19.9,
			Description: "Wireless",
			SellerName:  "Tech Shop",
			CreatedAt:   "01/03/2024",
			ImageURL:    testBaseURL + "/uploads/a.jpg",
			Status:      "waiting_for_approve",
		}},
		TotalPages:  2,
		CurrentPage: 2,
		Total:       11,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("moderation page mismatch (-want +got):\n%s", diff)
	}
}

func TestAdminHandler_ListProducts_InvalidStatus(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/admin/products?status=inactive", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid status filter", errorMessage(t, rr))
}

func TestAdminHandler_SetProductStatus(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("SetProductStatus", mock.Anything, int64(5), "approved").Return(catalog.StatusApproved, nil).Once()
	f.catalog.On("SetProductStatus", mock.Anything, int64(5), "archived").
		Return(catalog.ProductStatus(""), apperr.New(apperr.ErrInvalidInput, `Invalid product status "archived"`)).Once()
	f.catalog.On("SetProductStatus", mock.Anything, int64(6), "approved").
		Return(catalog.ProductStatus(""), catalog.ErrProductNotFound).Once()

	rr := f.do(t, http.MethodPatch, "/admin/product/5/status", handler.SetProductStatusRequest{Status: "approved"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "approved", decode[handler.ProductStatusResponse](t, rr).NewStatus)

	rr = f.do(t, http.MethodPatch, "/admin/product/5/status", handler.SetProductStatusRequest{Status: "archived"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPatch, "/admin/product/6/status", handler.SetProductStatusRequest{Status: "approved"})
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminHandler_ListUsers(t *testing.T) {
	f := newFixture(t)
	f.accounts.On("ListUsers", mock.Anything, account.UserFilter{
		Search: "shop",
		Status: account.StatusBanned,
		Page:   paging.Params{Page: 1, PerPage: 5},
	}).Return(&account.UserPage{
		Users: []account.UserSummary{
			{ID: 1, Name: "Buyer", Phone: "0901", IsActive: false, Type: account.RoleBuyer},
			{ID: 2, Name: "Shop", Phone: "0902", IsActive: false, Type: account.RoleSeller, Avatar: "/uploads/av.png"},
		},
		Total:      2,
		Page:       1,
		PerPage:    5,
		TotalPages: 1,
	}, nil).Once()

	rr := f.do(t, http.MethodGet, "/admin/users?search=%20shop%20&status=banned&per_page=5", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"users": [
			{"id":1,"name":"Buyer","phone":"0901","status":"banned","type":"buyer","avatar":null},
			{"id":2,"name":"Shop","phone":"0902","status":"banned","type":"seller","avatar":"http://cdn.test/uploads/av.png"}
		],
		"total": 2,
		"current_page": 1,
		"total_pages": 1,
		"per_page": 5
	}`, rr.Body.String())
}

func TestAdminHandler_SetUserStatus(t *testing.T) {
	t.Run("activate seller", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("SetUserActive", mock.Anything, "seller", int64(2), true).Return(nil).Once()

		rr := f.do(t, http.MethodPatch, "/admin/user/seller/2/status", `{"is_active":true}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, handler.UserStatusResponse{
			Message: "Status updated successfully", UserID: 2, Type: "seller", NewStatus: "active",
		}, decode[handler.UserStatusResponse](t, rr))
	})

	t.Run("ban buyer", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("SetUserActive", mock.Anything, "buyer", int64(1), false).Return(nil).Once()

		rr := f.do(t, http.MethodPatch, "/admin/user/buyer/1/status", `{"is_active":false}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "banned", decode[handler.UserStatusResponse](t, rr).NewStatus)
	})

	t.Run("missing is_active", func(t *testing.T) {
		f := newFixture(t)
		rr := f.do(t, http.MethodPatch, "/admin/user/buyer/1/status", `{}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("not a boolean", func(t *testing.T) {
		f := newFixture(t)
		rr := f.do(t, http.MethodPatch, "/admin/user/buyer/1/status", `{"is_active":"yes"}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("SetUserActive", mock.Anything, "buyer", int64(99), true).Return(account.ErrBuyerNotFound).Once()

		rr := f.do(t, http.MethodPatch, "/admin/user/buyer/99/status", `{"is_active":true}`)
		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}
