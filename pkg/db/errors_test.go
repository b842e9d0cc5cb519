package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection reset")))

	assert.True(t, IsUniqueViolation(errors.New(`pq: duplicate key value violates unique constraint "idx_users_email"`)))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email"), ""))

	assert.True(t, IsUniqueViolation(errors.New(`pq: duplicate key value violates unique constraint "idx_users_email"`), "idx_users_email"))
	assert.False(t, IsUniqueViolation(errors.New(`pq: duplicate key value violates unique constraint "idx_users_email"`), "idx_cart_items_user_product"))
}

func TestIsUniqueViolationAgainstSQLite(t *testing.T) {
	conn := newTestDB(t)
	require.NoError(t, conn.Exec(`CREATE TABLE uniq_emails (id INTEGER PRIMARY KEY, email TEXT UNIQUE)`).Error)
	require.NoError(t, conn.Exec(`INSERT INTO uniq_emails (email) VALUES ('a@example.com')`).Error)

	err := conn.Exec(`INSERT INTO uniq_emails (email) VALUES ('a@example.com')`).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, errors.Is(err, gorm.ErrRecordNotFound))
}
