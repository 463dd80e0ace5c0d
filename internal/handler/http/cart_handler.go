package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketplace-service/internal/cart"
	"github.com/vasiliy-maslov/marketplace-service/internal/order"
)

type AddToCartRequest struct {
	BuyerID   int64 `json:"buyer_id" validate:"required"`
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutRequest struct {
	BuyerID int64 `json:"buyer_id" validate:"required"`
}

type CartItemResponse struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
	Shop      string  `json:"shop"`
	Subtotal  float64 `json:"subtotal"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total float64            `json:"total"`
}

type CheckoutResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
}

type BuyerOrderLineResponse struct {
	OrderID     int64   `json:"order_id"`
	OrderItemID int64   `json:"order_item_id"`
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
	Image       string  `json:"image"`
	Shop        string  `json:"shop"`
	SellerID    int64   `json:"seller_id"`
	OrderDate   string  `json:"orderDate"`
	Status      string  `json:"status"`
}

// CartHandler serves the buyer's cart and the orders it turns into.
type CartHandler struct {
	carts    cart.Service
	orders   order.Service
	present  Presenter
	validate *validator.Validate
}

func NewCartHandler(carts cart.Service, orders order.Service, present Presenter) *CartHandler {
	return &CartHandler{carts: carts, orders: orders, present: present, validate: newValidator()}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Route("/cart", func(r chi.Router) {
		r.Get("/", h.handleGetCart)
		r.Post("/", h.handleAddToCart)
		r.Put("/item/{itemID}", h.handleUpdateItem)
		r.Delete("/item/{itemID}", h.handleDeleteItem)
	})
	router.Route("/orders", func(r chi.Router) {
		r.Get("/", h.handleListOrders)
		r.Post("/", h.handleCheckout)
	})
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.GetCart(r.Context(), queryID(r, "buyer_id"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get cart")
		return
	}

	resp := CartResponse{Items: make([]CartItemResponse, 0, len(view.Items)), Total: money(view.Total)}
	for _, it := range view.Items {
		resp.Items = append(resp.Items, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Price:     money(it.UnitPrice),
			Quantity:  it.Quantity,
			Image:     h.present.assets.First(it.ImageURL),
			Shop:      it.ShopName,
			Subtotal:  money(it.Subtotal),
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if _, err := h.carts.AddToCart(r.Context(), req.BuyerID, req.ProductID, req.Quantity); err != nil {
		respondWithServiceError(w, r, err, "Failed to add to cart")
		return
	}
	respondWithJSON(w, http.StatusCreated, MessageResponse{Message: "Added to cart"})
}

func (h *CartHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if _, err := h.carts.UpdateCartItem(r.Context(), itemID, req.Quantity); err != nil {
		respondWithServiceError(w, r, err, "Failed to update cart item")
		return
	}
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Updated successfully"})
}

func (h *CartHandler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	if err := h.carts.DeleteCartItem(r.Context(), itemID); err != nil {
		respondWithServiceError(w, r, err, "Failed to delete cart item")
		return
	}
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Removed from cart"})
}

func (h *CartHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	ref, err := h.carts.Checkout(r.Context(), req.BuyerID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to place order")
		return
	}

	log.Info().Int64("order_id", ref.OrderID).Int64("buyer_id", req.BuyerID).Msg("Order placed")
	respondWithJSON(w, http.StatusCreated, CheckoutResponse{Message: "Order placed successfully", OrderID: ref.OrderID})
}

func (h *CartHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	lines, err := h.orders.ListOrdersForBuyer(r.Context(), queryID(r, "buyer_id"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list orders")
		return
	}

	resp := make([]BuyerOrderLineResponse, 0, len(lines))
	for _, l := range lines {
		resp = append(resp, BuyerOrderLineResponse{
			OrderID:     l.OrderID,
			OrderItemID: l.OrderItemID,
			ProductID:   l.ProductID,
			Name:        l.ProductName,
			Price:       money(l.UnitPrice),
			Quantity:    l.Quantity,
			Subtotal:    money(l.Subtotal),
			Image:       h.present.assets.First(l.ImageURL),
			Shop:        l.ShopName,
			SellerID:    l.SellerID,
			OrderDate:   h.present.date(l.OrderedAt),
			Status:      l.Status.String(),
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}
