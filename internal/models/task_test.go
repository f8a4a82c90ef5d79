package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTaskOverdue(t *testing.T) {
	now := time.Date(2026, time.March, 15, 14, 30, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	todayMidnight := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	tomorrow := now.AddDate(0, 0, 1)

	cases := []struct {
		name    string
		task    Task
		overdue bool
	}{
		{"no due date", Task{Status: TaskStatusPending}, false},
		{"due yesterday pending", Task{Status: TaskStatusPending, DueDate: &yesterday}, true},
		{"due yesterday in progress", Task{Status: TaskStatusInProgress, DueDate: &yesterday}, true},
		{"due yesterday done", Task{Status: TaskStatusDone, DueDate: &yesterday}, false},
		{"due today", Task{Status: TaskStatusPending, DueDate: &todayMidnight}, false},
		{"due tomorrow", Task{Status: TaskStatusPending, DueDate: &tomorrow}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.overdue, tc.task.Overdue(now))
		})
	}
}

func TestValidTaskStatus(t *testing.T) {
	require.True(t, ValidTaskStatus(TaskStatusPending))
	require.True(t, ValidTaskStatus(TaskStatusInProgress))
	require.True(t, ValidTaskStatus(TaskStatusDone))
	require.False(t, ValidTaskStatus("archived"))
	require.False(t, ValidTaskStatus(""))
}

func TestValidRole(t *testing.T) {
	require.True(t, ValidRole(RoleAdmin))
	require.True(t, ValidRole(RoleManager))
	require.True(t, ValidRole(RoleStaff))
	require.False(t, ValidRole("intern"))
}
