package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/marketplace-service/internal/account"
)

type RegisterRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Message string           `json:"message"`
	User    account.Identity `json:"user"`
}

type AuthHandler struct {
	service  account.Service
	validate *validator.Validate
}

func NewAuthHandler(service account.Service) *AuthHandler {
	return &AuthHandler{service: service, validate: newValidator()}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/register", h.handleRegister)
	router.Post("/login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	role, err := account.ParseRegistrationRole(req.Role)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	err = h.service.Register(r.Context(), account.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Role:        role,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to register")
		return
	}

	respondWithJSON(w, http.StatusCreated, MessageResponse{Message: "Register successful"})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	identity, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to log in")
		return
	}

	respondWithJSON(w, http.StatusOK, LoginResponse{Message: "Login successful", User: *identity})
}
