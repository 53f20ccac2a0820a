package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Avinashkumar1307/project-grap/internal/model"
	"github.com/Avinashkumar1307/project-grap/internal/utils"
)

// UserRepo persists accounts in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, password_hash, first_name, last_name, phone, google_id,
role, email_verified, refresh_token_hash, created_at, updated_at`

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u         model.User
		pwHash    sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
		phone     sql.NullString
		googleID  sql.NullString
		refHash   sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &pwHash, &firstName, &lastName, &phone, &googleID,
		&u.Role, &u.EmailVerified, &refHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	u.PasswordHash = nullable(pwHash)
	u.FirstName = nullable(firstName)
	u.LastName = nullable(lastName)
	u.Phone = nullable(phone)
	u.GoogleID = nullable(googleID)
	u.RefreshTokenHash = nullable(refHash)
	return u, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// Create inserts a password-based account and returns its ID.  The email is
// normalized to lower case; a duplicate yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, password string, firstName, lastName *string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name) VALUES (?,?,?,?)",
		email, hash, firstName, lastName)
	if err != nil {
		if isDuplicate(err) {
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

// CreateGoogle inserts an account created through Google login.  Such
// accounts have no password hash and arrive with a verified email.
func (r *UserRepo) CreateGoogle(ctx context.Context, email, googleID string, firstName, lastName *string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, google_id, first_name, last_name, email_verified) VALUES (?,?,?,?,1)",
		email, googleID, firstName, lastName)
	if err != nil {
		if isDuplicate(err) {
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

// GetByGoogleID fetches a user by its linked Google subject id.
func (r *UserRepo) GetByGoogleID(ctx context.Context, googleID string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE google_id=? LIMIT 1", googleID))
}

// LinkGoogleID attaches an external Google subject id to an existing account
// found by email match during federated login.
func (r *UserRepo) LinkGoogleID(ctx context.Context, userID uint64, googleID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET google_id=?, email_verified=1 WHERE id=?", googleID, userID)
	return err
}

// SetRefreshTokenHash stores the SHA-256 digest of the active refresh token.
// Passing nil clears the stored hash (logout).
func (r *UserRepo) SetRefreshTokenHash(ctx context.Context, userID uint64, hash *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=? WHERE id=?", hash, userID)
	return err
}
