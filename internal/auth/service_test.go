package auth

import (
	"testing"

	"veloce-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, password, role string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{
		Fullname:     "Test Seller",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestLoginUser_Success(t *testing.T) {
	db := setupAuthDB(t)
	created := createUser(t, db, "seller@example.com", "correct horse", domain.RoleSeller)

	u, err := LoginUser(db, LoginInput{Email: "seller@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, created.UserID, u.UserID)
	assert.Equal(t, domain.RoleSeller, u.Role)
}

func TestLoginUser_WrongPassword(t *testing.T) {
	db := setupAuthDB(t)
	createUser(t, db, "seller@example.com", "correct horse", domain.RoleSeller)

	_, err := LoginUser(db, LoginInput{Email: "seller@example.com", Password: "battery staple"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)
}

func TestLoginUser_UnknownEmail(t *testing.T) {
	db := setupAuthDB(t)
	_, err := LoginUser(db, LoginInput{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestLoginUser_MissingFields(t *testing.T) {
	db := setupAuthDB(t)
	_, err := LoginUser(db, LoginInput{Email: "", Password: ""})
	assert.ErrorIs(t, err, ErrEmailPasswordRequired)
}

func TestVerifyUser(t *testing.T) {
	shape, err := VerifyUser(map[string]interface{}{
		"user_id":  "abc-123",
		"fullname": "Test Admin",
		"email":    "admin@example.com",
		"role":     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", shape.UserID)
	assert.Equal(t, "admin", shape.Role)

	_, err = VerifyUser(nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = VerifyUser(map[string]interface{}{"fullname": "No ID"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = VerifyUser("not a map")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
