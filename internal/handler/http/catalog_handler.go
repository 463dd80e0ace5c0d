package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vasiliy-maslov/marketplace-service/internal/catalog"
)

type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProductResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Price       float64          `json:"price"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url"`
	SellerID    int64            `json:"seller_id"`
	SellerName  string           `json:"seller_name"`
	Shop        string           `json:"shop,omitempty"`
	Category    CategoryResponse `json:"category"`
}

type CatalogHandler struct {
	service catalog.Service
	present Presenter
}

func NewCatalogHandler(service catalog.Service, present Presenter) *CatalogHandler {
	return &CatalogHandler{service: service, present: present}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Get("/categories", h.handleListCategories)
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{productID}", h.handleGetProduct)
}

func (h *CatalogHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list categories")
		return
	}

	resp := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, CategoryResponse{ID: c.ID, Name: c.Name})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListApprovedProducts(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list products")
		return
	}

	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, h.toProductResponse(p))
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	p, err := h.service.GetProductDetail(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get product")
		return
	}

	resp := h.toProductResponse(*p)
	resp.Shop = p.SellerName
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) toProductResponse(p catalog.ProductSummary) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       money(p.Price),
		Description: p.Description,
		ImageURL:    h.present.assets.First(p.ImageURL),
		SellerID:    p.SellerID,
		SellerName:  p.SellerName,
		Category:    CategoryResponse{ID: p.CategoryID, Name: p.CategoryName},
	}
}
