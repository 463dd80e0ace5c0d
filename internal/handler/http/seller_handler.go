package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/marketplace-service/internal/catalog"
	"github.com/vasiliy-maslov/marketplace-service/internal/order"
)

type UpdateOrderItemStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderItemStatusResponse struct {
	Message     string `json:"message"`
	OrderItemID int64  `json:"order_item_id"`
	Status      string `json:"status"`
}

type OrderBuyerResponse struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type OrderProductResponse struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type SellerOrderLineResponse struct {
	OrderID        int64                `json:"order_id"`
	OrderItemID    int64                `json:"order_item_id"`
	OrderCode      string               `json:"order_code"`
	Status         string               `json:"status"`
	CreatedAt      string               `json:"created_at"`
	SellerSubtotal float64              `json:"seller_subtotal"`
	Buyer          OrderBuyerResponse   `json:"buyer"`
	Product        OrderProductResponse `json:"product"`
}

type CreateProductRequest struct {
	Name          string           `json:"name" validate:"required"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
	StockQuantity *int             `json:"stock_quantity" validate:"required"`
	CategoryID    int64            `json:"category_id" validate:"required"`
	Images        []string         `json:"images"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
	CategoryID    *int64           `json:"category_id"`
	Images        *[]string        `json:"images"`
	Status        *string          `json:"status"`
}

type SellerProductResponse struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	StockQuantity int      `json:"stock_quantity"`
	Status        string   `json:"status"`
	CategoryID    int64    `json:"category_id"`
	CategoryName  string   `json:"category_name"`
	CreatedAt     string   `json:"created_at"`
	Images        []string `json:"images"`
}

type ProductSavedResponse struct {
	Message string   `json:"message"`
	ID      int64    `json:"id,omitempty"`
	Images  []string `json:"images"`
}

// SellerHandler serves a seller's own orders and products.
type SellerHandler struct {
	products catalog.Service
	orders   order.Service
	present  Presenter
	validate *validator.Validate
}

func NewSellerHandler(products catalog.Service, orders order.Service, present Presenter) *SellerHandler {
	return &SellerHandler{products: products, orders: orders, present: present, validate: newValidator()}
}

func (h *SellerHandler) RegisterRoutes(router chi.Router) {
	router.Route("/seller/{sellerID}", func(r chi.Router) {
		r.Get("/orders", h.handleListOrders)
		r.Patch("/order-item/{itemID}/status", h.handleUpdateItemStatus)
		r.Get("/products", h.handleListProducts)
		r.Post("/products", h.handleCreateProduct)
		r.Put("/product/{productID}", h.handleUpdateProduct)
		r.Delete("/product/{productID}", h.handleDeleteProduct)
	})
}

func (h *SellerHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := pathID(w, r, "sellerID")
	if !ok {
		return
	}

	q := r.URL.Query()
	lines, err := h.orders.ListOrdersForSeller(r.Context(), sellerID, q.Get("from_date"), q.Get("to_date"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list orders")
		return
	}

	resp := make([]SellerOrderLineResponse, 0, len(lines))
	for _, l := range lines {
		resp = append(resp, SellerOrderLineResponse{
			OrderID:        l.OrderID,
			OrderItemID:    l.OrderItemID,
			OrderCode:      order.Code(l.OrderID),
			Status:         l.Status.String(),
			CreatedAt:      h.present.date(l.OrderedAt),
			SellerSubtotal: money(l.Subtotal),
			Buyer:          OrderBuyerResponse{FullName: l.BuyerName, Phone: l.BuyerPhone},
			Product: OrderProductResponse{
				Name:     l.ProductName,
				Quantity: l.Quantity,
				Price:    money(l.UnitPrice),
			},
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *SellerHandler) handleUpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := pathID(w, r, "sellerID")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	var req UpdateOrderItemStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	status, err := h.orders.UpdateOrderItemStatus(r.Context(), sellerID, itemID, req.Status)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update order status")
		return
	}

	respondWithJSON(w, http.StatusOK, OrderItemStatusResponse{
		Message:     "Status updated successfully",
		OrderItemID: itemID,
		Status:      status.String(),
	})
}

func (h *SellerHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := pathID(w, r, "sellerID")
	if !ok {
		return
	}

	products, err := h.products.ListSellerProducts(r.Context(), sellerID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list products")
		return
	}

	resp := make([]SellerProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, SellerProductResponse{
			ID:            p.ID,
			Name:          p.Name,
			Description:   p.Description,
			Price:         money(p.Price),
			StockQuantity: p.StockQuantity,
			Status:        string(p.Status),
			CategoryID:    p.CategoryID,
			CategoryName:  p.CategoryName,
			CreatedAt:     h.present.date(p.CreatedAt),
			Images:        h.present.assets.URLs(p.ImageURL),
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *SellerHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := pathID(w, r, "sellerID")
	if !ok {
		return
	}

	var req CreateProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	p, err := h.products.CreateProduct(r.Context(), sellerID, catalog.NewProduct{
		Name:          req.Name,
		Description:   req.Description,
		Price:         *req.Price,
		StockQuantity: *req.StockQuantity,
		CategoryID:    req.CategoryID,
		Images:        req.Images,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, ProductSavedResponse{
		Message: "Product created successfully",
		ID:      p.ID,
		Images:  h.present.assets.URLs(p.ImageURL),
	})
}

func (h *SellerHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := pathID(w, r, "sellerID")
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	p, err := h.products.UpdateProduct(r.Context(), sellerID, productID, catalog.ProductUpdate{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
		Images:        req.Images,
		Status:        req.Status,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update product")
		return
	}

	respondWithJSON(w, http.StatusOK, ProductSavedResponse{
		Message: "Product updated successfully",
		Images:  h.present.assets.URLs(p.ImageURL),
	})
}

func (h *SellerHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := pathID(w, r, "sellerID")
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(r.Context(), sellerID, productID); err != nil {
		respondWithServiceError(w, r, err, "Failed to delete product")
		return
	}
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}
