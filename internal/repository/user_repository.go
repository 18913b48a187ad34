package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/avestan/hotel-booking-api/internal/model"
	"github.com/avestan/hotel-booking-api/internal/utils"
)

// UserRepo persists users and their credential state.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,reset_token_hash,reset_expires_at,password_changed_at,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u         model.User
		resetHash sql.NullString
		resetExp  sql.NullTime
		changedAt sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&resetHash, &resetExp, &changedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	if resetHash.Valid {
		u.ResetTokenHash = &resetHash.String
	}
	if resetExp.Valid {
		t := resetExp.Time
		u.ResetExpiresAt = &t
	}
	if changedAt.Valid {
		t := changedAt.Time
		u.PasswordChangedAt = &t
	}
	return u, nil
}

// Create inserts a user with a freshly hashed password and returns its ID.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		name, email, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetRoleByID reads only the role column. The admin middleware uses this to
// re-verify the role from the store rather than trusting the value carried in
// the request context.
func (r *UserRepo) GetRoleByID(ctx context.Context, id uint64) (string, error) {
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT role FROM users WHERE id=? LIMIT 1", id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return role, err
}

// ListAll returns every user. Password hashes stay server-side; the model's
// JSON tags exclude them from responses.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email,role,created_at,updated_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetResetToken stores the hash and expiry of a newly issued password-reset
// token, replacing any previous one.
func (r *UserRepo) SetResetToken(ctx context.Context, id uint64, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=?, reset_expires_at=? WHERE id=?",
		tokenHash, expiresAt, id)
	return err
}

// GetByResetTokenHash finds the user holding an unexpired reset token with
// the given hash. ErrNotFound covers both unknown and expired tokens so the
// caller cannot distinguish the two.
func (r *UserRepo) GetByResetTokenHash(ctx context.Context, tokenHash string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE reset_token_hash=? LIMIT 1", tokenHash))
	if err != nil {
		return model.User{}, err
	}
	if u.ResetExpiresAt == nil || time.Now().UTC().After(*u.ResetExpiresAt) {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

// UpdatePassword hashes and stores a new password, clears any outstanding
// reset token and records the change timestamp. The timestamp is backdated
// one second so a token issued in the same instant is still honored.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	changedAt := time.Now().UTC().Add(-time.Second)
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, reset_token_hash=NULL, reset_expires_at=NULL, password_changed_at=? WHERE id=?",
		hash, changedAt, id)
	return err
}
