package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketplace-service/internal/account"
	"github.com/vasiliy-maslov/marketplace-service/internal/report"
	"github.com/vasiliy-maslov/marketplace-service/internal/storage"
)

// maxUploadSize caps the whole body of a form or upload request.
const maxUploadSize = 10 << 20

const buyerRoleLabel = "Người mua"

type UpdateBuyerRequest struct {
	FullName    *string `json:"full_name"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number"`
	AddressLine *string `json:"address_line"`
	Password    *string `json:"password"`
}

type BuyerProfileResponse struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AddressLine string `json:"address_line"`
	Role        string `json:"role"`
}

type SellerStatsResponse struct {
	Products  int     `json:"products"`
	Orders    int     `json:"orders"`
	Completed int     `json:"completed"`
	Revenue   float64 `json:"revenue"`
}

type SellerProfileResponse struct {
	ID       int64               `json:"id"`
	ShopName string              `json:"shop_name"`
	Email    string              `json:"email"`
	Avatar   string              `json:"avatar"`
	Stats    SellerStatsResponse `json:"stats"`
}

type UpdateSellerResponse struct {
	Message string `json:"message"`
	Avatar  string `json:"avatar"`
}

type ProfileHandler struct {
	accounts account.Service
	reports  report.Service
	files    storage.Storage
	present  Presenter
	validate *validator.Validate
}

func NewProfileHandler(accounts account.Service, reports report.Service, files storage.Storage, present Presenter) *ProfileHandler {
	return &ProfileHandler{
		accounts: accounts,
		reports:  reports,
		files:    files,
		present:  present,
		validate: newValidator(),
	}
}

func (h *ProfileHandler) RegisterRoutes(router chi.Router) {
	router.Route("/profile", func(r chi.Router) {
		r.Get("/buyer/{buyerID}", h.handleGetBuyer)
		r.Put("/buyer/{buyerID}", h.handleUpdateBuyer)
		r.Get("/seller/{sellerID}", h.handleGetSeller)
		r.Post("/seller/{sellerID}", h.handleUpdateSeller)
		r.Put("/seller/{sellerID}", h.handleUpdateSeller)
	})
}

func (h *ProfileHandler) handleGetBuyer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "buyerID")
	if !ok {
		return
	}

	buyer, err := h.accounts.GetBuyer(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get profile")
		return
	}
	respondWithJSON(w, http.StatusOK, toBuyerProfile(buyer))
}

func (h *ProfileHandler) handleUpdateBuyer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "buyerID")
	if !ok {
		return
	}

	var req UpdateBuyerRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	buyer, err := h.accounts.UpdateBuyer(r.Context(), id, account.BuyerUpdate{
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		AddressLine: req.AddressLine,
		Password:    req.Password,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update profile")
		return
	}
	respondWithJSON(w, http.StatusOK, toBuyerProfile(buyer))
}

func toBuyerProfile(b *account.Buyer) BuyerProfileResponse {
	return BuyerProfileResponse{
		ID:          b.ID,
		FullName:    b.FullName,
		Email:       b.Email,
		Phone:       b.PhoneNumber,
		AddressLine: b.AddressLine,
		Role:        buyerRoleLabel,
	}
}

func (h *ProfileHandler) handleGetSeller(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sellerID")
	if !ok {
		return
	}

	seller, err := h.accounts.GetSeller(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get profile")
		return
	}

	stats, err := h.reports.SellerProfileStats(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get profile")
		return
	}

	respondWithJSON(w, http.StatusOK, SellerProfileResponse{
		ID:       seller.ID,
		ShopName: seller.ShopName,
		Email:    seller.Email,
		Avatar:   h.present.assets.URL(seller.Avatar),
		Stats: SellerStatsResponse{
			Products:  stats.Products,
			Orders:    stats.Orders,
			Completed: stats.Completed,
			Revenue:   money(stats.Revenue),
		},
	})
}

// handleUpdateSeller accepts a multipart or url-encoded form. Only fields
// present in the form are changed; an "avatar" file replaces the avatar.
func (h *ProfileHandler) handleUpdateSeller(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sellerID")
	if !ok {
		return
	}

	if err := parseForm(w, r); err != nil {
		log.Warn().Err(err).Int64("seller_id", id).Msg("Failed to parse seller profile form")
		if isTooLarge(err) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	if _, err := h.accounts.GetSeller(r.Context(), id); err != nil {
		respondWithServiceError(w, r, err, "Failed to update profile")
		return
	}

	upd := account.SellerUpdate{
		ShopName:    formValue(r, "shop_name"),
		Email:       formValue(r, "email"),
		PhoneNumber: formValue(r, "phone_number"),
		Password:    formValue(r, "password"),
	}

	avatar, err := h.storeFormFile(r, "avatar", fmt.Sprintf("avatar_%d", id))
	if err != nil {
		log.Error().Err(err).Int64("seller_id", id).Msg("Failed to store avatar")
		respondWithError(w, http.StatusInternalServerError, "Failed to save avatar")
		return
	}
	if avatar != "" {
		upd.Avatar = &avatar
	}

	seller, err := h.accounts.UpdateSeller(r.Context(), id, upd)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update profile")
		return
	}

	respondWithJSON(w, http.StatusOK, UpdateSellerResponse{
		Message: "Updated successfully",
		Avatar:  h.present.assets.URL(seller.Avatar),
	})
}

// storeFormFile saves the uploaded file field under a generated name and
// returns its stored path, or "" when the field is absent.
func (h *ProfileHandler) storeFormFile(r *http.Request, field, prefix string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	if header.Filename == "" {
		return "", nil
	}
	name, err := storage.ObjectName(prefix, header.Filename)
	if err != nil {
		return "", err
	}
	return h.files.Put(r.Context(), name, file, header.Header.Get("Content-Type"))
}

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	err := r.ParseMultipartForm(maxUploadSize)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

// formValue returns a pointer to the field's value when the form carries
// the field at all.
func formValue(r *http.Request, key string) *string {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}
