// Package storage provides the SQLite-backed persistence for the server.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"studentdesk/internal/domain"
)

var (
	// ErrStudentNotFound indicates that no student matches the lookup.
	ErrStudentNotFound = errors.New("student not found")
	// ErrStudentExists indicates a registration with an already-taken name.
	ErrStudentExists = errors.New("student already exists")
	// ErrHomeworkNotFound indicates that no homework matches the id.
	ErrHomeworkNotFound = errors.New("homework not found")
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS students (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name TEXT NOT NULL UNIQUE,
	program TEXT NOT NULL,
	year INTEGER NOT NULL,
	password_hash TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schedule (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	program TEXT NOT NULL,
	week_day TEXT NOT NULL,
	time TEXT NOT NULL,
	subject TEXT NOT NULL,
	classroom TEXT,
	teacher TEXT
);

CREATE TABLE IF NOT EXISTS homeworks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id INTEGER REFERENCES students(id) ON DELETE CASCADE,
	program TEXT,
	title TEXT NOT NULL,
	description TEXT,
	due_date TEXT,
	created_at TEXT NOT NULL,
	pushed INTEGER NOT NULL DEFAULT 0,
	attachment TEXT
);

CREATE TABLE IF NOT EXISTS grades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	subject TEXT NOT NULL,
	grade TEXT NOT NULL,
	comment TEXT,
	created_at TEXT NOT NULL
);
`

// Student is a stored student account.
type Student struct {
	ID           int
	FullName     string
	Program      string
	Year         int
	PasswordHash string
	CreatedAt    string
}

// HomeworkRecord is a stored homework row. StudentID is zero for entries
// pushed to a whole program.
type HomeworkRecord struct {
	ID          int
	StudentID   int
	Program     string
	Title       string
	Description string
	DueDate     string
	CreatedAt   string
	Pushed      int
	Attachment  string
}

// Homework converts the record to its API shape.
func (r HomeworkRecord) Homework() domain.Homework {
	return domain.Homework{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Pushed:      r.Pushed,
		Attachment:  r.Attachment,
	}
}

// Storage wraps the SQLite database.
type Storage struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and applies the
// schema.
func New(dbPath string) (*Storage, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("storage: db path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying SQLite connection.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("storage: set busy timeout: %w", err)
	}
	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("storage: enable foreign keys: %w", err)
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("storage: create schema: %w", err)
	}
	return nil
}

func utcNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// CreateStudent inserts a new student and returns its id. The name must
// be unique.
func (s *Storage) CreateStudent(ctx context.Context, fullName, program string, year int, passwordHash string) (int, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM students WHERE full_name = ?", fullName).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("storage: check student: %w", err)
	}
	if exists > 0 {
		return 0, ErrStudentExists
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO students (full_name, program, year, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		fullName, program, year, passwordHash, utcNow())
	if err != nil {
		return 0, fmt.Errorf("storage: create student: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: student id: %w", err)
	}
	return int(id), nil
}

// StudentByName looks a student up by full name.
func (s *Storage) StudentByName(ctx context.Context, fullName string) (Student, error) {
	return s.scanStudent(s.db.QueryRowContext(ctx,
		"SELECT id, full_name, program, year, COALESCE(password_hash, ''), created_at FROM students WHERE full_name = ?",
		fullName))
}

// StudentByID looks a student up by id.
func (s *Storage) StudentByID(ctx context.Context, id int) (Student, error) {
	return s.scanStudent(s.db.QueryRowContext(ctx,
		"SELECT id, full_name, program, year, COALESCE(password_hash, ''), created_at FROM students WHERE id = ?",
		id))
}

func (s *Storage) scanStudent(row *sql.Row) (Student, error) {
	var st Student
	err := row.Scan(&st.ID, &st.FullName, &st.Program, &st.Year, &st.PasswordHash, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrStudentNotFound
	}
	if err != nil {
		return Student{}, fmt.Errorf("storage: scan student: %w", err)
	}
	return st, nil
}

// CountStudents returns the number of registered students.
func (s *Storage) CountStudents(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM students").Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count students: %w", err)
	}
	return n, nil
}

// AddScheduleItem inserts one schedule row for a program.
func (s *Storage) AddScheduleItem(ctx context.Context, program string, item domain.ScheduleItem) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO schedule (program, week_day, time, subject, classroom, teacher) VALUES (?, ?, ?, ?, ?, ?)",
		program, item.WeekDay, item.Time, item.Subject, item.Classroom, item.Teacher)
	if err != nil {
		return fmt.Errorf("storage: add schedule item: %w", err)
	}
	return nil
}

// ScheduleForProgram returns the schedule rows of a program, optionally
// filtered by week day. An empty or "All" day returns everything.
func (s *Storage) ScheduleForProgram(ctx context.Context, program, day string) ([]domain.ScheduleItem, error) {
	query := "SELECT week_day, time, subject, COALESCE(classroom, ''), COALESCE(teacher, '') FROM schedule WHERE program = ?"
	args := []any{program}
	if day != "" && day != "All" {
		query += " AND week_day = ?"
		args = append(args, day)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list schedule: %w", err)
	}
	defer rows.Close()

	items := []domain.ScheduleItem{}
	for rows.Next() {
		var item domain.ScheduleItem
		if err := rows.Scan(&item.WeekDay, &item.Time, &item.Subject, &item.Classroom, &item.Teacher); err != nil {
			return nil, fmt.Errorf("storage: scan schedule: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddHomework inserts a homework row and returns its id. A zero StudentID
// stores NULL, meaning the entry targets the whole program.
func (s *Storage) AddHomework(ctx context.Context, rec HomeworkRecord) (int, error) {
	var studentID any
	if rec.StudentID != 0 {
		studentID = rec.StudentID
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO homeworks (student_id, program, title, description, due_date, created_at, pushed, attachment) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		studentID, rec.Program, rec.Title, rec.Description, rec.DueDate, utcNow(), rec.Pushed, rec.Attachment)
	if err != nil {
		return 0, fmt.Errorf("storage: add homework: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: homework id: %w", err)
	}
	return int(id), nil
}

// HomeworkForStudent returns homework addressed to the student directly
// or to the student's whole program.
func (s *Storage) HomeworkForStudent(ctx context.Context, studentID int, program string) ([]domain.Homework, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, COALESCE(description, ''), COALESCE(due_date, ''), pushed, COALESCE(attachment, '')
		 FROM homeworks WHERE student_id = ? OR program = ? ORDER BY id`,
		studentID, program)
	if err != nil {
		return nil, fmt.Errorf("storage: list homework: %w", err)
	}
	defer rows.Close()

	items := []domain.Homework{}
	for rows.Next() {
		var hw domain.Homework
		if err := rows.Scan(&hw.ID, &hw.Title, &hw.Description, &hw.DueDate, &hw.Pushed, &hw.Attachment); err != nil {
			return nil, fmt.Errorf("storage: scan homework: %w", err)
		}
		items = append(items, hw)
	}
	return items, rows.Err()
}

// HomeworkByID returns a single homework row.
func (s *Storage) HomeworkByID(ctx context.Context, id int) (HomeworkRecord, error) {
	var rec HomeworkRecord
	var studentID sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, student_id, COALESCE(program, ''), title, COALESCE(description, ''), COALESCE(due_date, ''),
		        created_at, pushed, COALESCE(attachment, '')
		 FROM homeworks WHERE id = ?`, id).
		Scan(&rec.ID, &studentID, &rec.Program, &rec.Title, &rec.Description, &rec.DueDate,
			&rec.CreatedAt, &rec.Pushed, &rec.Attachment)
	if errors.Is(err, sql.ErrNoRows) {
		return HomeworkRecord{}, ErrHomeworkNotFound
	}
	if err != nil {
		return HomeworkRecord{}, fmt.Errorf("storage: scan homework: %w", err)
	}
	rec.StudentID = int(studentID.Int64)
	return rec, nil
}

// AddGrade inserts a grade row for a student and returns its id.
func (s *Storage) AddGrade(ctx context.Context, studentID int, g domain.Grade) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO grades (student_id, subject, grade, comment, created_at) VALUES (?, ?, ?, ?, ?)",
		studentID, g.Subject, g.Grade, g.Comment, utcNow())
	if err != nil {
		return 0, fmt.Errorf("storage: add grade: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: grade id: %w", err)
	}
	return int(id), nil
}

// GradesForStudent returns the student's grades.
func (s *Storage) GradesForStudent(ctx context.Context, studentID int) ([]domain.Grade, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, subject, grade, COALESCE(comment, '') FROM grades WHERE student_id = ? ORDER BY id",
		studentID)
	if err != nil {
		return nil, fmt.Errorf("storage: list grades: %w", err)
	}
	defer rows.Close()

	items := []domain.Grade{}
	for rows.Next() {
		var g domain.Grade
		if err := rows.Scan(&g.ID, &g.Subject, &g.Grade, &g.Comment); err != nil {
			return nil, fmt.Errorf("storage: scan grade: %w", err)
		}
		items = append(items, g)
	}
	return items, rows.Err()
}
