package api

import (
	"context"

	"studentdesk/internal/domain"
)

// StudentSource binds a Client to a logged-in student so callers can fetch
// category data without carrying the student id around.
type StudentSource struct {
	client    *Client
	studentID int
}

// SourceFor returns a StudentSource for the given student id.
func (c *Client) SourceFor(studentID int) *StudentSource {
	return &StudentSource{client: c, studentID: studentID}
}

// StudentID returns the bound student id.
func (s *StudentSource) StudentID() int {
	return s.studentID
}

// Homework fetches the student's homework list.
func (s *StudentSource) Homework(ctx context.Context) ([]domain.Homework, error) {
	return s.client.Homework(ctx, s.studentID)
}

// Schedule fetches the full weekly schedule for the student's program.
func (s *StudentSource) Schedule(ctx context.Context) ([]domain.ScheduleItem, error) {
	return s.client.Schedule(ctx, s.studentID, "All")
}

// Grades fetches the student's grades.
func (s *StudentSource) Grades(ctx context.Context) ([]domain.Grade, error) {
	return s.client.Grades(ctx, s.studentID)
}
