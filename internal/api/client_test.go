package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentdesk/internal/domain"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["full_name"] == "Anna Petrova" && body["password"] == "secret" {
			json.NewEncoder(w).Encode(Session{ID: 7, FullName: "Anna Petrova"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)

	sess, err := c.Login(context.Background(), "Anna Petrova", "secret")
	require.NoError(t, err)
	assert.Equal(t, 7, sess.ID)
	assert.Equal(t, "Anna Petrova", sess.FullName)

	_, err = c.Login(context.Background(), "Anna Petrova", "wrong")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/register", r.URL.Path)
		var req RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "CS", req.Program)
		require.Equal(t, 2, req.Year)
		json.NewEncoder(w).Encode(Session{ID: 1, FullName: req.FullName})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	sess, err := c.Register(context.Background(), RegisterRequest{
		FullName: "Ivan Ivanov", Program: "CS", Year: 2, Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sess.ID)
}

func TestScheduleDayFilter(t *testing.T) {
	var gotDay string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/students/7/schedule", r.URL.Path)
		gotDay = r.URL.Query().Get("day")
		json.NewEncoder(w).Encode([]domain.ScheduleItem{
			{WeekDay: "Monday", Time: "09:00-10:30", Subject: "Programming", Classroom: "A101", Teacher: "I. Sidorov"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)

	items, err := c.Schedule(context.Background(), 7, "Monday")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Monday", gotDay)
	assert.Equal(t, "Programming", items[0].Subject)

	// "All" must not send a day filter
	_, err = c.Schedule(context.Background(), 7, "All")
	require.NoError(t, err)
	assert.Empty(t, gotDay)
}

func TestHomeworkAndGrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/students/7/homework":
			json.NewEncoder(w).Encode([]domain.Homework{
				{ID: 1, Title: "Lab 1", DueDate: "2025-10-10", Pushed: 1},
			})
		case "/students/7/grades":
			json.NewEncoder(w).Encode([]domain.Grade{
				{ID: 3, Subject: "Programming", Grade: "A", Comment: "Excellent"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "student not found"})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)

	hw, err := c.Homework(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, hw, 1)
	assert.Equal(t, "Lab 1", hw[0].Title)

	grades, err := c.Grades(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, "A", grades[0].Grade)

	_, err = c.Homework(context.Background(), 99)
	require.Error(t, err)
	apiErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "student not found", apiErr.Message)
}

func TestSubmitHomeworkJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Contains(t, r.Header.Get("Content-Type"), "application/json")
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Essay", body["title"])
		json.NewEncoder(w).Encode(SubmitResult{ID: 42, Title: body["title"]})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	result, err := c.SubmitHomework(context.Background(), 7, Submission{
		Title: "Essay", Description: "10 pages", DueDate: "2025-10-12",
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result.ID)
	assert.Empty(t, result.Attachment)
}

func TestSubmitHomeworkMultipart(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("solution"), 0644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "Lab 2", r.FormValue("title"))
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "report.txt", header.Filename)
		json.NewEncoder(w).Encode(SubmitResult{ID: 5, Title: "Lab 2", Attachment: "20250101000000_report.txt"})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	result, err := c.SubmitHomework(context.Background(), 7, Submission{
		Title: "Lab 2", FilePath: filePath,
	})
	require.NoError(t, err)
	assert.Equal(t, "20250101000000_report.txt", result.Attachment)
}

func TestSubmitHomeworkMissingFile(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second)
	_, err := c.SubmitHomework(context.Background(), 7, Submission{
		Title: "Lab", FilePath: "/nonexistent/file.txt",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open attachment")
}

func TestDownloadAttachment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/homework/5/download", r.URL.Path)
		w.Header().Set("Content-Disposition", `attachment; filename="report.txt"`)
		w.Write([]byte("solution"))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	dest := t.TempDir()
	path, err := c.DownloadAttachment(context.Background(), 5, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "report.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "solution", string(data))
}

func TestDownloadAttachmentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "attachment not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.DownloadAttachment(context.Background(), 5, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attachment not found")
}

func TestPushHomework(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/push_homework", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "CS", body["program"])
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "id": 11})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	id, err := c.PushHomework(context.Background(), "CS", "Lab 3", "desc", "2025-11-01")
	require.NoError(t, err)
	assert.Equal(t, 11, id)
}

func TestSourceFor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/students/3/homework":
			json.NewEncoder(w).Encode([]domain.Homework{{ID: 1, Title: "Lab"}})
		case "/students/3/schedule":
			require.Empty(t, r.URL.Query().Get("day"))
			json.NewEncoder(w).Encode([]domain.ScheduleItem{{WeekDay: "Monday", Subject: "Math"}})
		case "/students/3/grades":
			json.NewEncoder(w).Encode([]domain.Grade{{ID: 2, Subject: "Math", Grade: "B"}})
		}
	}))
	defer srv.Close()

	src := New(srv.URL, time.Second).SourceFor(3)
	require.Equal(t, 3, src.StudentID())

	hw, err := src.Homework(context.Background())
	require.NoError(t, err)
	assert.Len(t, hw, 1)

	sched, err := src.Schedule(context.Background())
	require.NoError(t, err)
	assert.Len(t, sched, 1)

	grades, err := src.Grades(context.Background())
	require.NoError(t, err)
	assert.Len(t, grades, 1)
}

func TestAttachmentFilename(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{`attachment; filename="report.txt"`, "report.txt"},
		{`attachment; filename=report.txt`, "report.txt"},
		{`inline`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, attachmentFilename(tt.header))
		})
	}
}
