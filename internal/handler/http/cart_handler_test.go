package http_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
	"github.com/vasiliy-maslov/marketplace-service/internal/cart"
	handler "github.com/vasiliy-maslov/marketplace-service/internal/handler/http"
	"github.com/vasiliy-maslov/marketplace-service/internal/order"
)

func TestCartHandler_GetCart(t *testing.T) {
	f := newFixture(t)
	f.carts.On("GetCart", mock.Anything, int64(4)).Return(&cart.View{
		Items: []cart.ItemView{{
			Item: cart.Item{
				ID: 11, ProductID: 5, Quantity: 2,
				UnitPrice: decimal.RequireFromString("10.00"),
				Subtotal:  decimal.RequireFromString("20.00"),
			},
			ProductName: "P1",
			ImageURL:    "/uploads/p1.jpg",
			ShopName:    "Shop",
		}},
		Total: decimal.RequireFromString("20.00"),
	}, nil).Once()

	rr := f.do(t, http.MethodGet, "/cart?buyer_id=4", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[handler.CartResponse](t, rr)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, handler.CartItemResponse{
		ID: 11, ProductID: 5, Name: "P1", Price: 10, Quantity: 2,
		Image: testBaseURL + "/uploads/p1.jpg", Shop: "Shop", Subtotal: 20,
	}, resp.Items[0])
	assert.Equal(t, 20.0, resp.Total)
}

func TestCartHandler_GetCart_Empty(t *testing.T) {
	f := newFixture(t)
	f.carts.On("GetCart", mock.Anything, int64(4)).Return(&cart.View{Total: decimal.Zero}, nil).Once()

	rr := f.do(t, http.MethodGet, "/cart?buyer_id=4", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"items":[],"total":0}`, rr.Body.String())
}

func TestCartHandler_GetCart_MissingBuyer(t *testing.T) {
	f := newFixture(t)
	f.carts.On("GetCart", mock.Anything, int64(0)).
		Return(nil, apperr.New(apperr.ErrInvalidInput, "buyer_id is required")).Once()

	rr := f.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "buyer_id is required", errorMessage(t, rr))
}

func TestCartHandler_AddToCart(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newFixture(t)
		f.carts.On("AddToCart", mock.Anything, int64(4), int64(5), 2).Return(&cart.Item{ID: 1}, nil).Once()

		rr := f.do(t, http.MethodPost, "/cart", handler.AddToCartRequest{BuyerID: 4, ProductID: 5, Quantity: 2})
		require.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("over stock", func(t *testing.T) {
		f := newFixture(t)
		f.carts.On("AddToCart", mock.Anything, int64(4), int64(5), 9).
			Return(nil, &cart.InsufficientStockError{ProductID: 5, Requested: 9, Available: 3}).Once()

		rr := f.do(t, http.MethodPost, "/cart", handler.AddToCartRequest{BuyerID: 4, ProductID: 5, Quantity: 9})
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Quantity exceeds available stock", errorMessage(t, rr))
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture(t)
		rr := f.do(t, http.MethodPost, "/cart", map[string]any{"buyer_id": 4})
		require.Equal(t, http.StatusBadRequest, rr.Code)

		resp := decode[handler.ValidationErrorResponse](t, rr)
		assert.Contains(t, resp.Details, "product_id")
		assert.Contains(t, resp.Details, "quantity")
	})
}

func TestCartHandler_UpdateAndDeleteItem(t *testing.T) {
	f := newFixture(t)
	f.carts.On("UpdateCartItem", mock.Anything, int64(11), 0).Return(nil, cart.ErrInvalidQuantity).Once()
	f.carts.On("UpdateCartItem", mock.Anything, int64(11), 3).Return(&cart.Item{ID: 11, Quantity: 3}, nil).Once()
	f.carts.On("DeleteCartItem", mock.Anything, int64(12)).Return(cart.ErrItemNotFound).Once()

	rr := f.do(t, http.MethodPut, "/cart/item/11", handler.UpdateCartItemRequest{Quantity: 0})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPut, "/cart/item/11", handler.UpdateCartItemRequest{Quantity: 3})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodDelete, "/cart/item/12", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCartHandler_Checkout(t *testing.T) {
	testCases := []struct {
		name       string
		ref        *cart.OrderRef
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "success",
			ref:        &cart.OrderRef{OrderID: 42, Total: decimal.RequireFromString("25.00"), ItemCount: 2},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "insufficient stock",
			err:        &cart.InsufficientStockError{ProductID: 2, ProductName: "P2", Requested: 1},
			wantStatus: http.StatusBadRequest,
			wantError:  `Not enough stock for product "P2"`,
		},
		{
			name:       "empty cart",
			err:        cart.ErrEmptyCart,
			wantStatus: http.StatusBadRequest,
			wantError:  "Cart is empty",
		},
		{
			name:       "no address",
			err:        cart.ErrNoAddress,
			wantStatus: http.StatusBadRequest,
			wantError:  "Shipping address is missing",
		},
		{
			name:       "buyer missing",
			err:        cart.ErrBuyerNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "Buyer not found",
		},
		{
			name:       "store failure",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to place order",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.carts.On("Checkout", mock.Anything, int64(1)).Return(tc.ref, tc.err).Once()

			rr := f.do(t, http.MethodPost, "/orders", handler.CheckoutRequest{BuyerID: 1})
			require.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, errorMessage(t, rr))
				return
			}
			assert.Equal(t, int64(42), decode[handler.CheckoutResponse](t, rr).OrderID)
		})
	}
}

func TestCartHandler_ListOrders(t *testing.T) {
	f := newFixture(t)
	// 20:00 UTC on May 10 is already May 11 in Saigon.
	orderedAt := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)
	f.orders.On("ListOrdersForBuyer", mock.Anything, int64(1)).Return([]order.BuyerLine{{
		OrderID:     42,
		OrderItemID: 7,
		ProductID:   5,
		ProductName: "P1",
		ImageURL:    "https://img.example.com/p1.jpg",
		ShopName:    "Shop",
		SellerID:    2,
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("10.00"),
		Subtotal:    decimal.RequireFromString("20.00"),
		Status:      order.StatusPending,
		OrderedAt:   orderedAt,
	}}, nil).Once()

	rr := f.do(t, http.MethodGet, "/orders?buyer_id=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	lines := decode[[]handler.BuyerOrderLineResponse](t, rr)
	require.Len(t, lines, 1)
	assert.Equal(t, "11/05/2024", lines[0].OrderDate)
	assert.Equal(t, "pending", lines[0].Status)
	assert.Equal(t, "https://img.example.com/p1.jpg", lines[0].Image)
	assert.Equal(t, 20.0, lines[0].Subtotal)
}
