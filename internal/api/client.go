// Package api implements the HTTP client for the studentdesk server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"studentdesk/internal/domain"
	"studentdesk/internal/logging"
)

// DefaultTimeout is the per-request timeout used when none is configured.
const DefaultTimeout = 10 * time.Second

// Error is an error response returned by the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 response from the server.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// Session identifies a logged-in student.
type Session struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
}

// RegisterRequest carries the fields required to create a student account.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Program  string `json:"program"`
	Year     int    `json:"year"`
	Password string `json:"password"`
}

// Submission carries a new homework entry. FilePath, when set, is uploaded
// as a multipart attachment.
type Submission struct {
	Title       string
	Description string
	DueDate     string
	FilePath    string
}

// SubmitResult is the server acknowledgement for a submitted homework.
type SubmitResult struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Attachment string `json:"attachment"`
}

// Client talks to the studentdesk REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logging.Logger
}

// New creates a Client for the given base URL. A zero timeout falls back
// to DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logging.GetGlobal().With("component", "api"),
	}
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register creates a new student account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	var sess Session
	err := c.doJSON(ctx, http.MethodPost, "/register", req, &sess)
	return sess, err
}

// Login authenticates a student by full name and password.
func (c *Client) Login(ctx context.Context, fullName, password string) (Session, error) {
	body := map[string]string{"full_name": fullName, "password": password}
	var sess Session
	err := c.doJSON(ctx, http.MethodPost, "/login", body, &sess)
	return sess, err
}

// Schedule fetches the weekly schedule for the student's program.
// An empty or "All" day returns every row.
func (c *Client) Schedule(ctx context.Context, studentID int, day string) ([]domain.ScheduleItem, error) {
	path := fmt.Sprintf("/students/%d/schedule", studentID)
	if day != "" && day != "All" {
		path += "?day=" + url.QueryEscape(day)
	}
	var items []domain.ScheduleItem
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Homework fetches the student's homework, personal and program-wide.
func (c *Client) Homework(ctx context.Context, studentID int) ([]domain.Homework, error) {
	var items []domain.Homework
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/students/%d/homework", studentID), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Grades fetches the student's grades.
func (c *Client) Grades(ctx context.Context, studentID int) ([]domain.Grade, error) {
	var items []domain.Grade
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/students/%d/grades", studentID), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SubmitHomework creates a homework entry for the student. When sub.FilePath
// is set the request is sent as multipart form data with the file attached,
// otherwise as JSON.
func (c *Client) SubmitHomework(ctx context.Context, studentID int, sub Submission) (SubmitResult, error) {
	var result SubmitResult
	path := fmt.Sprintf("/students/%d/homework", studentID)
	if sub.FilePath == "" {
		body := map[string]string{
			"title":       sub.Title,
			"description": sub.Description,
			"due_date":    sub.DueDate,
		}
		err := c.doJSON(ctx, http.MethodPost, path, body, &result)
		return result, err
	}

	f, err := os.Open(sub.FilePath)
	if err != nil {
		return result, fmt.Errorf("failed to open attachment: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, value := range map[string]string{
		"title":       sub.Title,
		"description": sub.Description,
		"due_date":    sub.DueDate,
	} {
		if err := w.WriteField(field, value); err != nil {
			return result, err
		}
	}
	part, err := w.CreateFormFile("file", filepath.Base(sub.FilePath))
	if err != nil {
		return result, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return result, fmt.Errorf("failed to read attachment: %w", err)
	}
	if err := w.Close(); err != nil {
		return result, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return result, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return result, err
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, fmt.Errorf("failed to decode response: %w", err)
	}
	c.log.Info("homework submitted", "id", result.ID, "attachment", result.Attachment)
	return result, nil
}

// DownloadAttachment downloads the attachment of a homework entry into
// destDir and returns the saved file path.
func (c *Client) DownloadAttachment(ctx context.Context, homeworkID int, destDir string) (string, error) {
	path := fmt.Sprintf("/homework/%d/download", homeworkID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return "", err
	}

	name := attachmentFilename(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = fmt.Sprintf("homework_%d_attachment", homeworkID)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, filepath.Base(name))
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to save attachment: %w", err)
	}
	c.log.Info("attachment downloaded", "homework_id", homeworkID, "path", dest)
	return dest, nil
}

// PushHomework broadcasts a homework entry to every student of a program.
func (c *Client) PushHomework(ctx context.Context, program, title, description, dueDate string) (int, error) {
	body := map[string]string{
		"program":     program,
		"title":       title,
		"description": description,
		"due_date":    dueDate,
	}
	var ack struct {
		OK bool `json:"ok"`
		ID int  `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/admin/push_homework", body, &ack); err != nil {
		return 0, err
	}
	return ack.ID, nil
}

// doJSON performs a JSON request and decodes the response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// checkResponse converts non-2xx responses into *Error, extracting the
// server's error message when present.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	apiErr := &Error{StatusCode: resp.StatusCode}
	var payload struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && json.Unmarshal(data, &payload) == nil {
		apiErr.Message = payload.Error
	}
	return apiErr
}

// attachmentFilename extracts the filename from a Content-Disposition header.
func attachmentFilename(header string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "filename=") {
			return strings.Trim(strings.TrimPrefix(part, "filename="), `"`)
		}
	}
	return ""
}
