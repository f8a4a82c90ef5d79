package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskdesk/taskdesk-api/internal/dto"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
)

func TestActivityRecordNormalizesAction(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(repository.NewActivityLogRepository(db), nil, nopLogger())
	ctx := context.Background()

	actor := makeUser(t, db, "admin", models.RoleAdmin, true)

	err := svc.Record(ctx, ActivityEntry{
		ActorID:     actor.ID,
		Action:      "  Create_Task  ",
		Description: "Task created: demo (ID: 1)",
		Metadata:    map[string]interface{}{"task_id": 1},
	})
	require.NoError(t, err)

	var stored models.ActivityLog
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, models.ActionCreateTask, stored.Action)
	require.Equal(t, actor.ID, stored.UserID)
	require.NotZero(t, stored.LoggedAt)
}

func TestActivityRecordRequiresAction(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(repository.NewActivityLogRepository(db), nil, nopLogger())

	err := svc.Record(context.Background(), ActivityEntry{ActorID: 1, Description: "no action"})
	require.Error(t, err)
}

func TestActivityListAdminOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(repository.NewActivityLogRepository(db), nil, nopLogger())
	ctx := context.Background()

	admin := makeUser(t, db, "admin", models.RoleAdmin, true)
	manager := makeUser(t, db, "manager", models.RoleManager, true)
	staff := makeUser(t, db, "staff", models.RoleStaff, true)

	require.NoError(t, svc.Record(ctx, ActivityEntry{ActorID: admin.ID, Action: models.ActionCreateUser, Description: "a"}))
	require.NoError(t, svc.Record(ctx, ActivityEntry{ActorID: manager.ID, Action: models.ActionCreateTask, Description: "b"}))

	_, err := svc.List(ctx, manager, dto.ActivityLogListRequest{})
	require.ErrorIs(t, err, ErrAccessDenied)
	_, err = svc.List(ctx, staff, dto.ActivityLogListRequest{})
	require.ErrorIs(t, err, ErrAccessDenied)

	listed, err := svc.List(ctx, admin, dto.ActivityLogListRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, listed.Items, 2)
	require.EqualValues(t, 2, listed.Pagination.TotalItems)
	// Newest first.
	require.Equal(t, "b", listed.Items[0].Description)

	filtered, err := svc.List(ctx, admin, dto.ActivityLogListRequest{Page: 1, PageSize: 20, UserID: manager.ID})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	require.Equal(t, models.ActionCreateTask, filtered.Items[0].Action)
}
