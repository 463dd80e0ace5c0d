package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/marketplace-service/internal/account"
	"github.com/vasiliy-maslov/marketplace-service/internal/catalog"
	"github.com/vasiliy-maslov/marketplace-service/internal/paging"
	"github.com/vasiliy-maslov/marketplace-service/internal/report"
)

type AdminStatsResponse struct {
	GMV             float64 `json:"gmv"`
	DAU             int     `json:"dau"`
	MAU             int     `json:"mau"`
	PendingProducts int     `json:"pending_products"`
}

type ModerationProductResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	SellerName  string  `json:"seller_name"`
	CreatedAt   string  `json:"created_at"`
	ImageURL    string  `json:"image_url"`
	Status      string  `json:"status"`
}

type ModerationPageResponse struct {
	Products    []ModerationProductResponse `json:"products"`
	TotalPages  int                         `json:"total_pages"`
	CurrentPage int                         `json:"current_page"`
	Total       int                         `json:"total"`
}

type SetProductStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ProductStatusResponse struct {
	Message   string `json:"message"`
	NewStatus string `json:"new_status"`
}

type AdminUserResponse struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Phone  string  `json:"phone"`
	Status string  `json:"status"`
	Type   string  `json:"type"`
	Avatar *string `json:"avatar"`
}

type UserPageResponse struct {
	Users       []AdminUserResponse `json:"users"`
	Total       int                 `json:"total"`
	CurrentPage int                 `json:"current_page"`
	TotalPages  int                 `json:"total_pages"`
	PerPage     int                 `json:"per_page"`
}

type SetUserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type UserStatusResponse struct {
	Message   string `json:"message"`
	UserID    int64  `json:"user_id"`
	Type      string `json:"type"`
	NewStatus string `json:"new_status"`
}

type AdminHandler struct {
	accounts account.Service
	products catalog.Service
	reports  report.Service
	present  Presenter
	validate *validator.Validate
}

func NewAdminHandler(accounts account.Service, products catalog.Service, reports report.Service, present Presenter) *AdminHandler {
	return &AdminHandler{
		accounts: accounts,
		products: products,
		reports:  reports,
		present:  present,
		validate: newValidator(),
	}
}

func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Route("/admin", func(r chi.Router) {
		r.Get("/stats", h.handleStats)
		r.Get("/products", h.handleListProducts)
		r.Patch("/product/{productID}/status", h.handleSetProductStatus)
		r.Get("/users", h.handleListUsers)
		r.Patch("/user/{userType}/{userID}/status", h.handleSetUserStatus)
	})
}

func (h *AdminHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := h.reports.AdminStats(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get stats")
		return
	}

	respondWithJSON(w, http.StatusOK, AdminStatsResponse{
		GMV:             money(stats.GMV),
		DAU:             stats.DAU,
		MAU:             stats.MAU,
		PendingProducts: stats.PendingProducts,
	})
}

func (h *AdminHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, err := catalog.ParseModerationFilter(q.Get("status"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list products")
		return
	}

	page, err := h.products.ListForModeration(r.Context(), catalog.ModerationFilter{
		Status: status,
		Page:   paging.FromQuery(q),
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list products")
		return
	}

	resp := ModerationPageResponse{
		Products:    make([]ModerationProductResponse, 0, len(page.Products)),
		TotalPages:  page.TotalPages,
		CurrentPage: page.Page,
		Total:       page.Total,
	}
	for _, p := range page.Products {
		resp.Products = append(resp.Products, ModerationProductResponse{
			ID:          p.ID,
			Name:        p.Name,
			Price:       money(p.Price),
			Description: p.Description,
			SellerName:  p.SellerName,
			CreatedAt:   h.present.date(p.CreatedAt),
			ImageURL:    h.present.assets.First(p.ImageURL),
			Status:      string(p.Status),
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) handleSetProductStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var req SetProductStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	status, err := h.products.SetProductStatus(r.Context(), id, req.Status)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update product status")
		return
	}
	respondWithJSON(w, http.StatusOK, ProductStatusResponse{
		Message:   "Status updated successfully",
		NewStatus: string(status),
	})
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.accounts.ListUsers(r.Context(), account.UserFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Status: account.ParseUserStatusFilter(q.Get("status")),
		Page:   paging.FromQuery(q),
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list users")
		return
	}

	resp := UserPageResponse{
		Users:       make([]AdminUserResponse, 0, len(page.Users)),
		Total:       page.Total,
		CurrentPage: page.Page,
		TotalPages:  page.TotalPages,
		PerPage:     page.PerPage,
	}
	for _, u := range page.Users {
		var avatar *string
		if u.Avatar != "" {
			url := h.present.assets.URL(u.Avatar)
			avatar = &url
		}
		resp.Users = append(resp.Users, AdminUserResponse{
			ID:     u.ID,
			Name:   u.Name,
			Phone:  u.Phone,
			Status: account.StatusLabel(u.IsActive),
			Type:   u.Type.String(),
			Avatar: avatar,
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) handleSetUserStatus(w http.ResponseWriter, r *http.Request) {
	userType := chi.URLParam(r, "userType")
	id, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	var req SetUserStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.accounts.SetUserActive(r.Context(), userType, id, *req.IsActive); err != nil {
		respondWithServiceError(w, r, err, "Failed to update user status")
		return
	}

	respondWithJSON(w, http.StatusOK, UserStatusResponse{
		Message:   "Status updated successfully",
		UserID:    id,
		Type:      userType,
		NewStatus: account.StatusLabel(*req.IsActive),
	})
}
