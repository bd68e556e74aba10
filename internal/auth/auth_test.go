package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/db"
	"yatube/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(conn, db.DriverSQLite))
	return conn
}

func TestRegister(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()

	uid, err := Register(ctx, conn, " Leo@Example.com ", "leo", "secret-pass")
	require.NoError(t, err)
	assert.NotZero(t, uid)

	_, err = Register(ctx, conn, "leo@example.com", "leo2", "secret-pass")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = Register(ctx, conn, "other@example.com", "leo", "secret-pass")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = Register(ctx, conn, "short@example.com", "short", "123")
	assert.Error(t, err)

	_, err = Register(ctx, conn, "", "nobody", "secret-pass")
	assert.Error(t, err)
}

func TestLoginAndSession(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	uid, err := Register(ctx, conn, "leo@example.com", "leo", "secret-pass")
	require.NoError(t, err)

	_, _, err = Login(ctx, conn, "leo", "wrong", time.Hour)
	assert.ErrorIs(t, err, ErrInvalidLogin)
	_, _, err = Login(ctx, conn, "nobody", "secret-pass", time.Hour)
	assert.ErrorIs(t, err, ErrInvalidLogin)

	sid, got, err := Login(ctx, conn, "leo", "secret-pass", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, uid, got)

	u, exp, err := UserFromSession(ctx, conn, sid)
	require.NoError(t, err)
	assert.Equal(t, "leo", u.Username)
	assert.True(t, exp.After(time.Now()))

	// A new login replaces the old session.
	sid2, _, err := Login(ctx, conn, "leo", "secret-pass", time.Hour)
	require.NoError(t, err)
	_, _, err = UserFromSession(ctx, conn, sid)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, Logout(ctx, conn, sid2))
	_, _, err = UserFromSession(ctx, conn, sid2)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUserContext(t *testing.T) {
	_, ok := UserFrom(context.Background())
	assert.False(t, ok)

	ctx := WithUser(context.Background(), &models.User{ID: 7, Username: "leo"})
	u, ok := UserFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(7), u.ID)
}
