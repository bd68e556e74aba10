package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"yatube/internal/db"
	"yatube/internal/models"
)

var (
	ErrEmailTaken    = errors.New("email already taken")
	ErrUsernameTaken = errors.New("username already taken")
	ErrInvalidLogin  = errors.New("invalid username or password")
	ErrNoSession     = errors.New("session not found")
)

// ----------------------------
// Context helpers
// ----------------------------

type ctxKeyUser struct{}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

// UserFrom returns the signed-in user, or false for a guest.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, _ := ctx.Value(ctxKeyUser{}).(*models.User)
	return u, u != nil && u.ID != 0
}

// ----------------------------
// Register
// ----------------------------

func Register(ctx context.Context, conn *sql.DB, email, username, password string) (int64, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	if email == "" || username == "" || password == "" {
		return 0, errors.New("email, username and password are required")
	}
	if len(password) < 6 {
		return 0, errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	var uid int64
	err = conn.QueryRowContext(ctx,
		`INSERT INTO users (email, username, password_hash, created_at)
         VALUES ($1, $2, $3, $4)
         RETURNING id`,
		email, username, string(hash), time.Now().UTC(),
	).Scan(&uid)
	switch {
	case db.IsUniqueViolation(err, "users.email"):
		return 0, ErrEmailTaken
	case db.IsUniqueViolation(err, "users.username"):
		return 0, ErrUsernameTaken
	case err != nil:
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return uid, nil
}

// ----------------------------
// Login
// ----------------------------

// Login checks the password and opens a fresh session, replacing any older
// sessions of the same user.
func Login(ctx context.Context, conn *sql.DB, username, password string, lifetime time.Duration) (string, int64, error) {
	username = strings.TrimSpace(username)

	var uid int64
	var passwdHash string
	err := conn.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE username = $1`, username,
	).Scan(&uid, &passwdHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, ErrInvalidLogin
	}
	if err != nil {
		return "", 0, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwdHash), []byte(password)); err != nil {
		return "", 0, ErrInvalidLogin
	}

	sid, err := StartSession(ctx, conn, uid, lifetime)
	if err != nil {
		return "", 0, err
	}
	return sid, uid, nil
}

// StartSession creates a session for uid without checking credentials.
func StartSession(ctx context.Context, conn *sql.DB, uid int64, lifetime time.Duration) (string, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, uid); err != nil {
		return "", fmt.Errorf("delete old sessions: %w", err)
	}

	now := time.Now().UTC()
	sid := uuid.New().String()
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO sessions (id, user_id, expires_at, created_at)
        VALUES ($1, $2, $3, $4)
    `, sid, uid, now.Add(lifetime), now); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return sid, nil
}

// ----------------------------
// Logout
// ----------------------------

func Logout(ctx context.Context, conn *sql.DB, sid string) error {
	_, err := conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sid)
	return err
}

// ----------------------------
// UserFromSession: resolves a cookie value to its user
// ----------------------------

func UserFromSession(ctx context.Context, conn *sql.DB, sid string) (*models.User, time.Time, error) {
	var (
		u   models.User
		exp time.Time
	)
	err := conn.QueryRowContext(ctx, `
SELECT u.id, u.email, u.username, u.created_at, s.expires_at
  FROM sessions s
  JOIN users u ON u.id = s.user_id
 WHERE s.id = $1
`, sid).Scan(&u.ID, &u.Email, &u.Username, &u.CreatedAt, &exp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNoSession
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	return &u, exp, nil
}
