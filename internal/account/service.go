package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
	"github.com/vasiliy-maslov/marketplace-service/internal/config"
)

var (
	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthorized, "Invalid email or password")
	ErrAccountBlocked     = apperr.New(apperr.ErrForbidden, "Account is blocked")
)

type Service interface {
	Register(ctx context.Context, in RegisterInput) error
	Login(ctx context.Context, email, password string) (*Identity, error)
	CreateAdmin(ctx context.Context, username, email, password string) (*Admin, error)

	GetBuyer(ctx context.Context, id int64) (*Buyer, error)
	UpdateBuyer(ctx context.Context, id int64, upd BuyerUpdate) (*Buyer, error)
	GetSeller(ctx context.Context, id int64) (*Seller, error)
	UpdateSeller(ctx context.Context, id int64, upd SellerUpdate) (*Seller, error)

	ListUsers(ctx context.Context, filter UserFilter) (*UserPage, error)
	SetUserActive(ctx context.Context, userType string, id int64, active bool) error
}

type service struct {
	repo      Repository
	hasher    PasswordHasher
	bootstrap config.AdminConfig
}

func NewService(repo Repository, hasher PasswordHasher, bootstrap config.AdminConfig) Service {
	return &service{repo: repo, hasher: hasher, bootstrap: bootstrap}
}

func (s *service) Register(ctx context.Context, in RegisterInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	taken, err := s.repo.EmailRegistered(ctx, in.Email)
	if err != nil {
		return fmt.Errorf("service: failed to check email: %w", err)
	}
	if taken {
		return ErrEmailExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return fmt.Errorf("service: failed to hash password: %w", err)
	}

	switch in.Role {
	case RoleBuyer:
		err = s.repo.CreateBuyer(ctx, &Buyer{
			FullName:     in.Name,
			Email:        in.Email,
			PhoneNumber:  in.PhoneNumber,
			PasswordHash: hash,
		})
	case RoleSeller:
		err = s.repo.CreateSeller(ctx, &Seller{
			ShopName:     in.Name,
			Email:        in.Email,
			PhoneNumber:  in.PhoneNumber,
			PasswordHash: hash,
		})
	default:
		return apperr.New(apperr.ErrInvalidInput, "Invalid role")
	}
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return err
		}
		log.Error().Err(err).Str("email", in.Email).Stringer("role", in.Role).Msg("service: failed to register account")
		return fmt.Errorf("service: failed to register %s: %w", in.Role, err)
	}

	log.Info().Str("email", in.Email).Stringer("role", in.Role).Msg("Account registered, awaiting activation")
	return nil
}

// Login resolves the account owning email. Admins are checked first, then
// the configured bootstrap admin, then sellers and buyers. A blocked seller
// or buyer is rejected before the password is checked.
func (s *service) Login(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.TrimSpace(email)

	admin, err := s.repo.GetAdminByEmail(ctx, email)
	switch {
	case err == nil:
		if s.hasher.Verify(admin.PasswordHash, password) {
			return &Identity{ID: admin.ID, Email: admin.Email, Role: RoleAdmin}, nil
		}
	case !errors.Is(err, ErrAdminNotFound):
		return nil, fmt.Errorf("service: failed to look up admin: %w", err)
	}

	if s.bootstrap.Email != "" && s.bootstrap.Password != "" &&
		email == s.bootstrap.Email && password == s.bootstrap.Password {
		return &Identity{ID: 0, Email: s.bootstrap.Email, Role: RoleAdmin}, nil
	}

	seller, err := s.repo.GetSellerByEmail(ctx, email)
	switch {
	case err == nil:
		if !seller.IsActive {
			return nil, ErrAccountBlocked
		}
		if s.hasher.Verify(seller.PasswordHash, password) {
			return &Identity{ID: seller.ID, Email: seller.Email, Role: RoleSeller}, nil
		}
	case !errors.Is(err, ErrSellerNotFound):
		return nil, fmt.Errorf("service: failed to look up seller: %w", err)
	}

	buyer, err := s.repo.GetBuyerByEmail(ctx, email)
	switch {
	case err == nil:
		if !buyer.IsActive {
			return nil, ErrAccountBlocked
		}
		if s.hasher.Verify(buyer.PasswordHash, password) {
			return &Identity{ID: buyer.ID, Email: buyer.Email, Role: RoleBuyer}, nil
		}
	case !errors.Is(err, ErrBuyerNotFound):
		return nil, fmt.Errorf("service: failed to look up buyer: %w", err)
	}

	return nil, ErrInvalidCredentials
}

func (s *service) CreateAdmin(ctx context.Context, username, email, password string) (*Admin, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, apperr.New(apperr.ErrInvalidInput, "username, email and password are required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	admin := &Admin{Username: username, Email: email, PasswordHash: hash}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}

	log.Info().Int64("admin_id", admin.ID).Str("username", username).Msg("Admin created")
	return admin, nil
}

func (s *service) GetBuyer(ctx context.Context, id int64) (*Buyer, error) {
	b, err := s.repo.GetBuyerByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		log.Error().Err(err).Int64("buyer_id", id).Msg("service: failed to get buyer")
		return nil, fmt.Errorf("service: failed to get buyer %d: %w", id, err)
	}
	return b, nil
}

// trimmed drops fields that are blank after trimming, so they leave the
// stored value unchanged.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func (s *service) hashed(v *string) (*string, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	hash, err := s.hasher.Hash(*v)
	if err != nil {
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}
	return &hash, nil
}

func (s *service) UpdateBuyer(ctx context.Context, id int64, upd BuyerUpdate) (*Buyer, error) {
	upd.FullName = trimmed(upd.FullName)
	upd.Email = trimmed(upd.Email)
	upd.PhoneNumber = trimmed(upd.PhoneNumber)
	upd.AddressLine = trimmed(upd.AddressLine)

	var err error
	if upd.Password, err = s.hashed(upd.Password); err != nil {
		return nil, err
	}

	b, err := s.repo.UpdateBuyer(ctx, id, upd)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		log.Error().Err(err).Int64("buyer_id", id).Msg("service: failed to update buyer")
		return nil, fmt.Errorf("service: failed to update buyer %d: %w", id, err)
	}
	return b, nil
}

func (s *service) GetSeller(ctx context.Context, id int64) (*Seller, error) {
	seller, err := s.repo.GetSellerByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		log.Error().Err(err).Int64("seller_id", id).Msg("service: failed to get seller")
		return nil, fmt.Errorf("service: failed to get seller %d: %w", id, err)
	}
	return seller, nil
}

func (s *service) UpdateSeller(ctx context.Context, id int64, upd SellerUpdate) (*Seller, error) {
	upd.ShopName = trimmed(upd.ShopName)
	upd.Email = trimmed(upd.Email)
	upd.PhoneNumber = trimmed(upd.PhoneNumber)
	upd.Avatar = trimmed(upd.Avatar)

	if upd.Password != nil {
		p := strings.TrimSpace(*upd.Password)
		upd.Password = &p
	}
	var err error
	if upd.Password, err = s.hashed(upd.Password); err != nil {
		return nil, err
	}

	seller, err := s.repo.UpdateSeller(ctx, id, upd)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		log.Error().Err(err).Int64("seller_id", id).Msg("service: failed to update seller")
		return nil, fmt.Errorf("service: failed to update seller %d: %w", id, err)
	}
	return seller, nil
}

func (s *service) ListUsers(ctx context.Context, filter UserFilter) (*UserPage, error) {
	users, total, err := s.repo.ListUsers(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("search", filter.Search).Msg("service: failed to list users")
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}
	return &UserPage{
		Users:      users,
		Total:      total,
		Page:       filter.Page.Page,
		PerPage:    filter.Page.PerPage,
		TotalPages: filter.Page.TotalPages(total),
	}, nil
}

func (s *service) SetUserActive(ctx context.Context, userType string, id int64, active bool) error {
	role, err := ParseUserType(userType)
	if err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, role, id, active); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service: failed to set %s %d active=%t: %w", role, id, active, err)
	}

	log.Info().Int64("user_id", id).Stringer("type", role).Bool("is_active", active).Msg("User status changed")
	return nil
}
