package tui

import (
	"studentdesk/internal/api"
	"studentdesk/internal/domain"
	"studentdesk/internal/settings"
	"studentdesk/internal/stack"
	"studentdesk/internal/watch"
)

// sessionMsg carries the outcome of a login or register attempt.
type sessionMsg struct {
	session api.Session
	err     error
}

// snapshotMsg carries the snapshot of a completed poll cycle.
type snapshotMsg struct {
	deltas   watch.Deltas
	snapshot watch.Snapshot
}

// pollStatusMsg carries the reachability state of a completed poll cycle.
type pollStatusMsg watch.Status

// stackMsg carries the on-screen notification placements after a change.
type stackMsg []stack.Placement

// settingsMsg carries settings reloaded from disk by the file watcher.
type settingsMsg *settings.Settings

// refreshedMsg carries data fetched outside the poll loop.
type refreshedMsg struct {
	homework []domain.Homework
	schedule []domain.ScheduleItem
	grades   []domain.Grade
	err      error
}

// submittedMsg carries the outcome of a homework submission.
type submittedMsg struct {
	result api.SubmitResult
	err    error
}

// downloadedMsg carries the outcome of an attachment download.
type downloadedMsg struct {
	path string
	err  error
}
