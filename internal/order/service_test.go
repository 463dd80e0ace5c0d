package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
	"github.com/vasiliy-maslov/marketplace-service/internal/order"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]order.BuyerLine, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.BuyerLine), args.Error(1)
}

func (m *MockRepository) ListBySeller(ctx context.Context, sellerID int64, r order.DateRange) ([]order.SellerLine, error) {
	args := m.Called(ctx, sellerID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.SellerLine), args.Error(1)
}

func (m *MockRepository) UpdateItemStatus(ctx context.Context, sellerID, itemID int64, status order.ItemStatus) error {
	args := m.Called(ctx, sellerID, itemID, status)
	return args.Error(0)
}

func saigon(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)
	return loc
}

func TestService_ListOrdersForBuyer_LocalDate(t *testing.T) {
	repo := new(MockRepository)
	svc := order.NewService(repo, saigon(t))

	// 20:30 UTC is already the next day in UTC+7.
	orderedAt := time.Date(2024, 3, 9, 20, 30, 0, 0, time.UTC)
	repo.On("ListByBuyer", mock.Anything, int64(1)).
		Return([]order.BuyerLine{{OrderID: 5, OrderedAt: orderedAt}}, nil).Once()

	lines, err := svc.ListOrdersForBuyer(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "10/03/2024", lines[0].OrderedAt.Format(order.DateLayout))
}

func TestService_ListOrdersForBuyer_RequiresBuyer(t *testing.T) {
	svc := order.NewService(new(MockRepository), time.UTC)

	_, err := svc.ListOrdersForBuyer(context.Background(), 0)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestService_ListOrdersForSeller_DateRange(t *testing.T) {
	loc := saigon(t)
	repo := new(MockRepository)
	svc := order.NewService(repo, loc)

	repo.On("ListBySeller", mock.Anything, int64(2), mock.MatchedBy(func(r order.DateRange) bool {
		return r.From != nil && r.From.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, loc)) &&
			r.Before == nil
	})).Return([]order.SellerLine{}, nil).Once()

	_, err := svc.ListOrdersForSeller(context.Background(), 2, "2024-03-01", "not-a-date")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestParseDateRange(t *testing.T) {
	loc := saigon(t)

	r := order.ParseDateRange("2024-03-01", "2024-03-31", loc)
	require.NotNil(t, r.From)
	require.NotNil(t, r.Before)
	assert.Equal(t, time.Date(2024, 2, 29, 17, 0, 0, 0, time.UTC), r.From.UTC())
	assert.Equal(t, time.Date(2024, 3, 31, 17, 0, 0, 0, time.UTC), r.Before.UTC())

	r = order.ParseDateRange("", "31/03/2024", loc)
	assert.Nil(t, r.From)
	assert.Nil(t, r.Before)
}

func TestService_UpdateOrderItemStatus(t *testing.T) {
	testCases := []struct {
		name    string
		status  string
		repoErr error
		wantErr error
	}{
		{name: "owner", status: "shipping"},
		{name: "unknown status", status: "lost", wantErr: apperr.ErrInvalidInput},
		{name: "missing status", status: "", wantErr: apperr.ErrInvalidInput},
		{name: "not owner", status: "completed", repoErr: order.ErrNotItemOwner, wantErr: apperr.ErrForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := order.NewService(repo, time.UTC)

			if tc.status != "" && tc.status != "lost" {
				repo.On("UpdateItemStatus", mock.Anything, int64(1), int64(10), order.ItemStatus(tc.status)).
					Return(tc.repoErr).Once()
			}

			got, err := svc.UpdateOrderItemStatus(context.Background(), 1, 10, tc.status)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, order.StatusShipping, got)
			repo.AssertExpectations(t)
		})
	}
}

func TestCode(t *testing.T) {
	assert.Equal(t, "DH000042", order.Code(42))
	assert.Equal(t, "DH1234567", order.Code(1234567))
}
