package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk-api/internal/dto"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
)

type userFixture struct {
	db       *gorm.DB
	svc      UserService
	recorder *recorderStub
}

func newUserFixture(t *testing.T) userFixture {
	t.Helper()
	db := newTestDB(t)
	recorder := &recorderStub{}
	svc := NewUserService(repository.NewUserRepository(db), recorder, newValidator(), nopLogger())
	return userFixture{db: db, svc: svc, recorder: recorder}
}

func TestUserCreateAdminOnly(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	admin := makeUser(t, f.db, "admin", models.RoleAdmin, true)
	manager := makeUser(t, f.db, "manager", models.RoleManager, true)

	payload := dto.UserCreateRequest{
		Name:     "New Staff",
		Email:    "New.Staff@Example.com",
		Password: "supersecret",
		Role:     models.RoleStaff,
	}

	_, err := f.svc.Create(ctx, manager, payload)
	require.ErrorIs(t, err, ErrAccessDenied)

	created, err := f.svc.Create(ctx, admin, payload)
	require.NoError(t, err)
	require.Equal(t, "new.staff@example.com", created.Email)
	require.True(t, created.Active)
	require.Equal(t, models.ActionCreateUser, f.recorder.lastAction())

	var stored models.User
	require.NoError(t, f.db.First(&stored, created.ID).Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("supersecret")))
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	admin := makeUser(t, f.db, "admin", models.RoleAdmin, true)
	existing := makeUser(t, f.db, "staff", models.RoleStaff, true)

	_, err := f.svc.Create(ctx, admin, dto.UserCreateRequest{
		Name:     "Clone",
		Email:    existing.Email,
		Password: "supersecret",
		Role:     models.RoleStaff,
	})

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "email", fieldErr.Field)
}

func TestUserUpdateRoleRules(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	admin := makeUser(t, f.db, "admin", models.RoleAdmin, true)
	manager := makeUser(t, f.db, "manager", models.RoleManager, true)
	otherManager := makeUser(t, f.db, "manager2", models.RoleManager, true)
	staff := makeUser(t, f.db, "staff", models.RoleStaff, true)
	otherStaff := makeUser(t, f.db, "staff2", models.RoleStaff, true)

	name := "Renamed"

	// Managers may edit staff and themselves, nobody else.
	_, err := f.svc.Update(ctx, manager, staff.ID, dto.UserUpdateRequest{Name: &name})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, manager, manager.ID, dto.UserUpdateRequest{Name: &name})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, manager, otherManager.ID, dto.UserUpdateRequest{Name: &name})
	require.ErrorIs(t, err, ErrAccessDenied)
	_, err = f.svc.Update(ctx, manager, admin.ID, dto.UserUpdateRequest{Name: &name})
	require.ErrorIs(t, err, ErrAccessDenied)

	// Staff may only edit themselves.
	_, err = f.svc.Update(ctx, staff, staff.ID, dto.UserUpdateRequest{Name: &name})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, staff, otherStaff.ID, dto.UserUpdateRequest{Name: &name})
	require.ErrorIs(t, err, ErrAccessDenied)

	// Admins may edit anyone.
	updated, err := f.svc.Update(ctx, admin, otherManager.ID, dto.UserUpdateRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
}

func TestUserUpdateEmailUniqueness(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	admin := makeUser(t, f.db, "admin", models.RoleAdmin, true)
	staff := makeUser(t, f.db, "staff", models.RoleStaff, true)
	other := makeUser(t, f.db, "staff2", models.RoleStaff, true)

	taken := other.Email
	_, err := f.svc.Update(ctx, admin, staff.ID, dto.UserUpdateRequest{Email: &taken})
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "email", fieldErr.Field)

	// Re-submitting their own address is not a conflict.
	own := staff.Email
	_, err = f.svc.Update(ctx, admin, staff.ID, dto.UserUpdateRequest{Email: &own})
	require.NoError(t, err)
}

func TestUserUpdatePasswordRehashed(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	admin := makeUser(t, f.db, "admin", models.RoleAdmin, true)
	staff := makeUser(t, f.db, "staff", models.RoleStaff, true)

	password := "rotated-secret"
	_, err := f.svc.Update(ctx, admin, staff.ID, dto.UserUpdateRequest{Password: &password})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, f.db.First(&stored, staff.ID).Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(password)))
}

func TestUserDeleteRules(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	admin := makeUser(t, f.db, "admin", models.RoleAdmin, true)
	manager := makeUser(t, f.db, "manager", models.RoleManager, true)
	staff := makeUser(t, f.db, "staff", models.RoleStaff, true)

	require.ErrorIs(t, f.svc.Delete(ctx, manager, staff.ID), ErrAccessDenied)

	// Admins cannot remove their own account.
	require.ErrorIs(t, f.svc.Delete(ctx, admin, admin.ID), ErrSelfDeleteForbidden)

	require.NoError(t, f.svc.Delete(ctx, admin, staff.ID))
	require.Equal(t, models.ActionDeleteUser, f.recorder.lastAction())

	require.ErrorIs(t, f.svc.Delete(ctx, admin, staff.ID), ErrUserNotFound)
}

func TestUserListVisibility(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	makeUser(t, f.db, "admin", models.RoleAdmin, true)
	manager := makeUser(t, f.db, "manager", models.RoleManager, true)
	staff := makeUser(t, f.db, "staff", models.RoleStaff, true)

	_, err := f.svc.List(ctx, staff, dto.UserListRequest{})
	require.ErrorIs(t, err, ErrAccessDenied)

	listed, err := f.svc.List(ctx, manager, dto.UserListRequest{Page: 1, PageSize: 15})
	require.NoError(t, err)
	require.Len(t, listed.Items, 3)
	require.EqualValues(t, 3, listed.Pagination.TotalItems)

	_, err = f.svc.Get(ctx, staff, manager.ID)
	require.ErrorIs(t, err, ErrAccessDenied)
}
