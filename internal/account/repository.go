package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
	"github.com/vasiliy-maslov/marketplace-service/internal/db"
)

var (
	ErrAdminNotFound  = apperr.New(apperr.ErrNotFound, "Admin not found")
	ErrBuyerNotFound  = apperr.New(apperr.ErrNotFound, "Buyer not found")
	ErrSellerNotFound = apperr.New(apperr.ErrNotFound, "Seller not found")
	ErrEmailExists    = apperr.New(apperr.ErrConflict, "Email already exists")
	ErrPhoneExists    = apperr.New(apperr.ErrConflict, "Phone number already exists")
)

type Repository interface {
	CreateAdmin(ctx context.Context, admin *Admin) error
	GetAdminByEmail(ctx context.Context, email string) (*Admin, error)

	EmailRegistered(ctx context.Context, email string) (bool, error)
	CreateBuyer(ctx context.Context, buyer *Buyer) error
	CreateSeller(ctx context.Context, seller *Seller) error

	GetBuyerByID(ctx context.Context, id int64) (*Buyer, error)
	GetBuyerByEmail(ctx context.Context, email string) (*Buyer, error)
	GetSellerByID(ctx context.Context, id int64) (*Seller, error)
	GetSellerByEmail(ctx context.Context, email string) (*Seller, error)

	UpdateBuyer(ctx context.Context, id int64, upd BuyerUpdate) (*Buyer, error)
	UpdateSeller(ctx context.Context, id int64, upd SellerUpdate) (*Seller, error)

	ListUsers(ctx context.Context, filter UserFilter) ([]UserSummary, int, error)
	SetActive(ctx context.Context, role Role, id int64, active bool) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateAdmin(ctx context.Context, admin *Admin) error {
	query := `
		INSERT INTO admins (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, admin.Username, admin.Email, admin.PasswordHash).Scan(&admin.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return apperr.New(apperr.ErrConflict, "Admin username or email already exists")
		}
		return fmt.Errorf("repository: failed to insert admin: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetAdminByEmail(ctx context.Context, email string) (*Admin, error) {
	query := `SELECT id, username, email, password_hash FROM admins WHERE email = $1`

	var a Admin
	err := r.db.QueryRow(ctx, query, email).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("repository: failed to select admin by email: %w", err)
	}
	return &a, nil
}

func (r *postgresRepository) EmailRegistered(ctx context.Context, email string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM sellers WHERE email = $1)
		    OR EXISTS (SELECT 1 FROM buyers WHERE email = $1)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("repository: failed to check email: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) CreateBuyer(ctx context.Context, b *Buyer) error {
	query := `
		INSERT INTO buyers (full_name, email, phone_number, password_hash, is_active)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, b.FullName, b.Email, b.PhoneNumber, b.PasswordHash, b.IsActive).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("repository: failed to insert buyer: %w", err)
	}
	return nil
}

func (r *postgresRepository) CreateSeller(ctx context.Context, s *Seller) error {
	query := `
		INSERT INTO sellers (shop_name, email, phone_number, password_hash, is_active)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, s.ShopName, s.Email, s.PhoneNumber, s.PasswordHash, s.IsActive).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("repository: failed to insert seller: %w", err)
	}
	return nil
}

const buyerColumns = `id, full_name, email, COALESCE(phone_number, ''), password_hash,
	COALESCE(address_line, ''), is_active, created_at, updated_at`

const sellerColumns = `id, shop_name, COALESCE(owner_name, ''), email, COALESCE(phone_number, ''),
	password_hash, COALESCE(avatar, ''), is_active, created_at, updated_at`

func scanBuyer(row pgx.Row) (*Buyer, error) {
	var b Buyer
	err := row.Scan(&b.ID, &b.FullName, &b.Email, &b.PhoneNumber, &b.PasswordHash,
		&b.AddressLine, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanSeller(row pgx.Row) (*Seller, error) {
	var s Seller
	err := row.Scan(&s.ID, &s.ShopName, &s.OwnerName, &s.Email, &s.PhoneNumber,
		&s.PasswordHash, &s.Avatar, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepository) getBuyer(ctx context.Context, q pgx.Tx, where string, arg any) (*Buyer, error) {
	query := `SELECT ` + buyerColumns + ` FROM buyers WHERE ` + where
	var row pgx.Row
	if q != nil {
		row = q.QueryRow(ctx, query+` FOR UPDATE`, arg)
	} else {
		row = r.db.QueryRow(ctx, query, arg)
	}
	b, err := scanBuyer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBuyerNotFound
		}
		return nil, fmt.Errorf("repository: failed to select buyer: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) getSeller(ctx context.Context, q pgx.Tx, where string, arg any) (*Seller, error) {
	query := `SELECT ` + sellerColumns + ` FROM sellers WHERE ` + where
	var row pgx.Row
	if q != nil {
		row = q.QueryRow(ctx, query+` FOR UPDATE`, arg)
	} else {
		row = r.db.QueryRow(ctx, query, arg)
	}
	s, err := scanSeller(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("repository: failed to select seller: %w", err)
	}
	return s, nil
}

func (r *postgresRepository) GetBuyerByID(ctx context.Context, id int64) (*Buyer, error) {
	return r.getBuyer(ctx, nil, "id = $1", id)
}

func (r *postgresRepository) GetBuyerByEmail(ctx context.Context, email string) (*Buyer, error) {
	return r.getBuyer(ctx, nil, "email = $1", email)
}

func (r *postgresRepository) GetSellerByID(ctx context.Context, id int64) (*Seller, error) {
	return r.getSeller(ctx, nil, "id = $1", id)
}

func (r *postgresRepository) GetSellerByEmail(ctx context.Context, email string) (*Seller, error) {
	return r.getSeller(ctx, nil, "email = $1", email)
}

// taken reports whether another row of table (not id) already uses value in
// column. table and column are never user input.
func taken(ctx context.Context, tx pgx.Tx, table, column, value string, id int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND id <> $2)`, table, column)
	var exists bool
	if err := tx.QueryRow(ctx, query, value, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("repository: failed to check %s.%s: %w", table, column, err)
	}
	return exists, nil
}

func (r *postgresRepository) UpdateBuyer(ctx context.Context, id int64, upd BuyerUpdate) (*Buyer, error) {
	var updated *Buyer
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		b, err := r.getBuyer(ctx, tx, "id = $1", id)
		if err != nil {
			return err
		}

		if upd.Email != nil && *upd.Email != b.Email {
			exists, err := taken(ctx, tx, "buyers", "email", *upd.Email, id)
			if err != nil {
				return err
			}
			if exists {
				return ErrEmailExists
			}
			b.Email = *upd.Email
		}
		if upd.PhoneNumber != nil && *upd.PhoneNumber != b.PhoneNumber {
			exists, err := taken(ctx, tx, "buyers", "phone_number", *upd.PhoneNumber, id)
			if err != nil {
				return err
			}
			if exists {
				return ErrPhoneExists
			}
			b.PhoneNumber = *upd.PhoneNumber
		}
		if upd.FullName != nil {
			b.FullName = *upd.FullName
		}
		if upd.AddressLine != nil {
			b.AddressLine = *upd.AddressLine
		}
		if upd.Password != nil {
			b.PasswordHash = *upd.Password
		}

		query := `
			UPDATE buyers
			SET full_name = $1, email = $2, phone_number = NULLIF($3, ''), address_line = $4,
			    password_hash = $5, updated_at = NOW()
			WHERE id = $6
			RETURNING updated_at
		`
		err = tx.QueryRow(ctx, query, b.FullName, b.Email, b.PhoneNumber, b.AddressLine, b.PasswordHash, id).
			Scan(&b.UpdatedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrEmailExists
			}
			return fmt.Errorf("repository: failed to update buyer %d: %w", id, err)
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *postgresRepository) UpdateSeller(ctx context.Context, id int64, upd SellerUpdate) (*Seller, error) {
	var updated *Seller
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		s, err := r.getSeller(ctx, tx, "id = $1", id)
		if err != nil {
			return err
		}

		if upd.Email != nil && *upd.Email != s.Email {
			exists, err := taken(ctx, tx, "sellers", "email", *upd.Email, id)
			if err != nil {
				return err
			}
			if exists {
				return ErrEmailExists
			}
			s.Email = *upd.Email
		}
		if upd.PhoneNumber != nil && *upd.PhoneNumber != s.PhoneNumber {
			exists, err := taken(ctx, tx, "sellers", "phone_number", *upd.PhoneNumber, id)
			if err != nil {
				return err
			}
			if exists {
				return ErrPhoneExists
			}
			s.PhoneNumber = *upd.PhoneNumber
		}
		if upd.ShopName != nil {
			s.ShopName = *upd.ShopName
		}
		if upd.Password != nil {
			s.PasswordHash = *upd.Password
		}
		if upd.Avatar != nil {
			s.Avatar = *upd.Avatar
		}

		query := `
			UPDATE sellers
			SET shop_name = $1, email = $2, phone_number = NULLIF($3, ''), password_hash = $4,
			    avatar = NULLIF($5, ''), updated_at = NOW()
			WHERE id = $6
			RETURNING updated_at
		`
		err = tx.QueryRow(ctx, query, s.ShopName, s.Email, s.PhoneNumber, s.PasswordHash, s.Avatar, id).
			Scan(&s.UpdatedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrEmailExists
			}
			return fmt.Errorf("repository: failed to update seller %d: %w", id, err)
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// likeEscaper makes user input match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// usersQuery builds the union of buyers and sellers with the filter applied
// to both halves. The returned args match the placeholders in the SQL.
func usersQuery(filter UserFilter) (string, []any) {
	var (
		args       []any
		conditions []string
	)

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		conditions = append(conditions, fmt.Sprintf(
			`({name} ILIKE $%d ESCAPE '\' OR COALESCE(phone_number, '') ILIKE $%d ESCAPE '\')`, len(args), len(args)))
	}
	if filter.Status != StatusAny {
		args = append(args, filter.Status == StatusActive)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
		SELECT id, full_name AS name, COALESCE(phone_number, '') AS phone, is_active, 'buyer' AS type, '' AS avatar
		FROM buyers ` + strings.ReplaceAll(where, "{name}", "full_name") + `
		UNION ALL
		SELECT id, shop_name AS name, COALESCE(phone_number, '') AS phone, is_active, 'seller' AS type, COALESCE(avatar, '') AS avatar
		FROM sellers ` + strings.ReplaceAll(where, "{name}", "shop_name")
	return query, args
}

func (r *postgresRepository) ListUsers(ctx context.Context, filter UserFilter) ([]UserSummary, int, error) {
	union, args := usersQuery(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM (` + union + `) AS u`
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count users: %w", err)
	}

	pageArgs := append(append([]any{}, args...), filter.Page.Limit(), filter.Page.Offset())
	listQuery := fmt.Sprintf(`SELECT id, name, phone, is_active, type, avatar FROM (%s) AS u
		ORDER BY type, id
		LIMIT $%d OFFSET $%d`, union, len(args)+1, len(args)+2)

	rows, err := r.db.Query(ctx, listQuery, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]UserSummary, 0)
	for rows.Next() {
		var u UserSummary
		var userType string
		if err := rows.Scan(&u.ID, &u.Name, &u.Phone, &u.IsActive, &userType, &u.Avatar); err != nil {
			return nil, 0, fmt.Errorf("repository: failed to scan user: %w", err)
		}
		u.Type = Role(userType)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository: failed iterating users: %w", err)
	}

	return users, total, nil
}

func (r *postgresRepository) SetActive(ctx context.Context, role Role, id int64, active bool) error {
	var query string
	var notFound error
	switch role {
	case RoleBuyer:
		query, notFound = `UPDATE buyers SET is_active = $1, updated_at = NOW() WHERE id = $2`, ErrBuyerNotFound
	case RoleSeller:
		query, notFound = `UPDATE sellers SET is_active = $1, updated_at = NOW() WHERE id = $2`, ErrSellerNotFound
	default:
		return fmt.Errorf("%w: unsupported user type %q", apperr.ErrInvalidInput, role)
	}

	cmdTag, err := r.db.Exec(ctx, query, active, id)
	if err != nil {
		log.Error().Err(err).Int64("user_id", id).Stringer("type", role).Msg("repository: failed to update user status")
		return fmt.Errorf("repository: failed to update %s %d status: %w", role, id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
