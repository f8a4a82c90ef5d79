package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}, &models.ActivityLog{}))
	return db
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func makeUser(t *testing.T, db *gorm.DB, name, role string, active bool) models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "x",
		Role:     role,
		Active:   active,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func makeUserWithPassword(t *testing.T, db *gorm.DB, name, role, password string, active bool) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: string(hash),
		Role:     role,
		Active:   active,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// recorderStub captures activity entries without touching the database.
type recorderStub struct {
	entries []ActivityEntry
	err     error
}

func (r *recorderStub) Record(_ context.Context, entry ActivityEntry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recorderStub) lastAction() string {
	if len(r.entries) == 0 {
		return ""
	}
	return r.entries[len(r.entries)-1].Action
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
