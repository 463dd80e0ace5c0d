package account

import (
	"fmt"
	"strings"
	"time"

	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
	"github.com/vasiliy-maslov/marketplace-service/internal/paging"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// registrationLabels maps the labels the mobile client sends to roles.
var registrationLabels = map[string]Role{
	"buyer":     RoleBuyer,
	"seller":    RoleSeller,
	"người mua": RoleBuyer,
	"người bán": RoleSeller,
}

// ParseRegistrationRole accepts "buyer", "seller" or the client's localized
// labels. An empty value means buyer.
func ParseRegistrationRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleBuyer, nil
	}
	role, ok := registrationLabels[s]
	if !ok {
		return "", fmt.Errorf("%w: invalid role %q", apperr.ErrInvalidInput, s)
	}
	return role, nil
}

// ParseUserType accepts only the two account types an admin can manage.
func ParseUserType(s string) (Role, error) {
	switch Role(s) {
	case RoleBuyer, RoleSeller:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: invalid user type %q, must be \"buyer\" or \"seller\"", apperr.ErrInvalidInput, s)
}

type Admin struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
}

type Buyer struct {
	ID           int64
	FullName     string
	Email        string
	PhoneNumber  string
	PasswordHash string
	AddressLine  string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

type Seller struct {
	ID           int64
	ShopName     string
	OwnerName    string
	Email        string
	PhoneNumber  string
	PasswordHash string
	Avatar       string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Identity is what a successful login returns. There is no session or
// token; clients keep the id and role.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
	Role        Role
}

// BuyerUpdate carries only the fields present in the request. A nil pointer
// leaves the column unchanged.
type BuyerUpdate struct {
	FullName    *string
	Email       *string
	PhoneNumber *string
	AddressLine *string
	Password    *string
}

type SellerUpdate struct {
	ShopName    *string
	Email       *string
	PhoneNumber *string
	Password    *string
	Avatar      *string
}

type UserStatusFilter string

const (
	StatusAny    UserStatusFilter = ""
	StatusActive UserStatusFilter = "active"
	StatusBanned UserStatusFilter = "banned"
)

func ParseUserStatusFilter(s string) UserStatusFilter {
	switch UserStatusFilter(s) {
	case StatusActive, StatusBanned:
		return UserStatusFilter(s)
	}
	return StatusAny
}

func StatusLabel(active bool) string {
	if active {
		return string(StatusActive)
	}
	return string(StatusBanned)
}

type UserFilter struct {
	Search string
	Status UserStatusFilter
	Page   paging.Params
}

// UserSummary is one row of the admin's combined buyer/seller listing.
type UserSummary struct {
	ID       int64
	Name     string
	Phone    string
	IsActive bool
	Type     Role
	Avatar   string
}

type UserPage struct {
	Users      []UserSummary
	Total      int
	Page       int
	PerPage    int
	TotalPages int
}
