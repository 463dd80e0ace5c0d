package http_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	"github.com/vasiliy-maslov/marketplace-service/internal/account"
	"github.com/vasiliy-maslov/marketplace-service/internal/cart"
	"github.com/vasiliy-maslov/marketplace-service/internal/catalog"
	"github.com/vasiliy-maslov/marketplace-service/internal/order"
	"github.com/vasiliy-maslov/marketplace-service/internal/report"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, in account.RegisterInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockAccountService) Login(ctx context.Context, email, password string) (*account.Identity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Identity), args.Error(1)
}

func (m *MockAccountService) CreateAdmin(ctx context.Context, username, email, password string) (*account.Admin, error) {
	args := m.Called(ctx, username, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Admin), args.Error(1)
}

func (m *MockAccountService) GetBuyer(ctx context.Context, id int64) (*account.Buyer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Buyer), args.Error(1)
}

func (m *MockAccountService) UpdateBuyer(ctx context.Context, id int64, upd account.BuyerUpdate) (*account.Buyer, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Buyer), args.Error(1)
}

func (m *MockAccountService) GetSeller(ctx context.Context, id int64) (*account.Seller, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Seller), args.Error(1)
}

func (m *MockAccountService) UpdateSeller(ctx context.Context, id int64, upd account.SellerUpdate) (*account.Seller, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Seller), args.Error(1)
}

func (m *MockAccountService) ListUsers(ctx context.Context, filter account.UserFilter) (*account.UserPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.UserPage), args.Error(1)
}

func (m *MockAccountService) SetUserActive(ctx context.Context, userType string, id int64, active bool) error {
	args := m.Called(ctx, userType, id, active)
	return args.Error(0)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCatalogService) ListApprovedProducts(ctx context.Context) ([]catalog.ProductSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ProductSummary), args.Error(1)
}

func (m *MockCatalogService) GetProductDetail(ctx context.Context, id int64) (*catalog.ProductSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductSummary), args.Error(1)
}

func (m *MockCatalogService) ListSellerProducts(ctx context.Context, sellerID int64) ([]catalog.ProductSummary, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ProductSummary), args.Error(1)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, sellerID int64, p catalog.NewProduct) (*catalog.Product, error) {
	args := m.Called(ctx, sellerID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, sellerID, productID int64, upd catalog.ProductUpdate) (*catalog.Product, error) {
	args := m.Called(ctx, sellerID, productID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, sellerID, productID int64) error {
	args := m.Called(ctx, sellerID, productID)
	return args.Error(0)
}

func (m *MockCatalogService) ListForModeration(ctx context.Context, filter catalog.ModerationFilter) (*catalog.ModerationPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ModerationPage), args.Error(1)
}

func (m *MockCatalogService) SetProductStatus(ctx context.Context, id int64, status string) (catalog.ProductStatus, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(catalog.ProductStatus), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, buyerID int64) (*cart.View, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

func (m *MockCartService) AddToCart(ctx context.Context, buyerID, productID int64, quantity int) (*cart.Item, error) {
	args := m.Called(ctx, buyerID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Item), args.Error(1)
}

func (m *MockCartService) UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*cart.Item, error) {
	args := m.Called(ctx, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Item), args.Error(1)
}

func (m *MockCartService) DeleteCartItem(ctx context.Context, itemID int64) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockCartService) Checkout(ctx context.Context, buyerID int64) (*cart.OrderRef, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.OrderRef), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) ListOrdersForBuyer(ctx context.Context, buyerID int64) ([]order.BuyerLine, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.BuyerLine), args.Error(1)
}

func (m *MockOrderService) ListOrdersForSeller(ctx context.Context, sellerID int64, from, to string) ([]order.SellerLine, error) {
	args := m.Called(ctx, sellerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.SellerLine), args.Error(1)
}

func (m *MockOrderService) UpdateOrderItemStatus(ctx context.Context, sellerID, itemID int64, status string) (order.ItemStatus, error) {
	args := m.Called(ctx, sellerID, itemID, status)
	return args.Get(0).(order.ItemStatus), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) SellerProfileStats(ctx context.Context, sellerID int64) (*report.SellerSummary, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SellerSummary), args.Error(1)
}

func (m *MockReportService) DashboardStats(ctx context.Context, userID int64, role, period string) (*report.SellerDashboard, error) {
	args := m.Called(ctx, userID, role, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SellerDashboard), args.Error(1)
}

func (m *MockReportService) BuyerPeriodStats(ctx context.Context, buyerID int64, period string) (*report.BuyerPeriod, error) {
	args := m.Called(ctx, buyerID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.BuyerPeriod), args.Error(1)
}

func (m *MockReportService) AdminStats(ctx context.Context, startDate, endDate string) (*report.AdminStats, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.AdminStats), args.Error(1)
}

// MockStorage records the body of every stored file.
type MockStorage struct {
	mock.Mock
	Stored map[string][]byte
}

func (m *MockStorage) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.Stored == nil {
		m.Stored = make(map[string][]byte)
	}
	m.Stored[name] = data
	args := m.Called(ctx, name, contentType)
	return args.String(0), args.Error(1)
}
