package storage

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"studentdesk/internal/domain"
)

// ErrAlreadySeeded is returned when seed data exists and Seed is called again.
var ErrAlreadySeeded = fmt.Errorf("database already contains students")

// Seed populates the database with sample students, schedule, homework and
// grades. It refuses to run when students already exist.
func (s *Storage) Seed(ctx context.Context) error {
	n, err := s.CountStudents(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrAlreadySeeded
	}

	hash1, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("storage: hash password: %w", err)
	}
	hash2, err := bcrypt.GenerateFromPassword([]byte("password2"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("storage: hash password: %w", err)
	}

	id1, err := s.CreateStudent(ctx, "Ivanov Ivan Ivanovich", "Software Engineering", 2, string(hash1))
	if err != nil {
		return err
	}
	id2, err := s.CreateStudent(ctx, "Petrova Maria Sergeevna", "Banking", 3, string(hash2))
	if err != nil {
		return err
	}

	schedule := []domain.ScheduleItem{
		{WeekDay: "Monday", Time: "09:00-10:30", Subject: "Programming", Classroom: "A101", Teacher: "I. Sidorov"},
		{WeekDay: "Monday", Time: "10:45-12:15", Subject: "Mathematics", Classroom: "A102", Teacher: "P. Ivanov"},
		{WeekDay: "Tuesday", Time: "09:00-10:30", Subject: "Operating Systems", Classroom: "A103", Teacher: "O. Petrov"},
	}
	for _, item := range schedule {
		if err := s.AddScheduleItem(ctx, "Software Engineering", item); err != nil {
			return err
		}
	}

	homeworks := []HomeworkRecord{
		{StudentID: id1, Program: "Software Engineering", Title: "Lab 1", Description: "Implement a calculator", DueDate: "2025-10-10"},
		{StudentID: id2, Program: "Banking", Title: "Banking operations essay", Description: "10 pages", DueDate: "2025-10-12"},
	}
	for _, hw := range homeworks {
		if _, err := s.AddHomework(ctx, hw); err != nil {
			return err
		}
	}

	grades := []struct {
		studentID int
		grade     domain.Grade
	}{
		{id1, domain.Grade{Subject: "Programming", Grade: "A", Comment: "Excellent"}},
		{id2, domain.Grade{Subject: "Economics", Grade: "B+", Comment: "Good"}},
	}
	for _, g := range grades {
		if _, err := s.AddGrade(ctx, g.studentID, g.grade); err != nil {
			return err
		}
	}

	return nil
}
