package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"studentdesk/internal/logging"
	"studentdesk/internal/server/storage"
)

type handlers struct {
	storage   *storage.Storage
	uploadDir string
	log       logging.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, errorResponse{Error: msg})
}

type sessionResponse struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Program  string `json:"program"`
	Year     int    `json:"year"`
	Password string `json:"password"`
}

func (h *handlers) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.FullName == "" || req.Program == "" || req.Year == 0 || req.Password == "" {
		return fail(c, http.StatusBadRequest, "full_name, program, year and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to hash password")
	}

	id, err := h.storage.CreateStudent(c.Request().Context(), req.FullName, req.Program, req.Year, string(hash))
	if errors.Is(err, storage.ErrStudentExists) {
		return fail(c, http.StatusBadRequest, "student with this name already exists")
	}
	if err != nil {
		h.log.Error("register failed", "error", err)
		return fail(c, http.StatusInternalServerError, "failed to create student")
	}
	h.log.Info("student registered", "id", id, "program", req.Program)
	return c.JSON(http.StatusOK, sessionResponse{ID: id, FullName: req.FullName})
}

type loginRequest struct {
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

func (h *handlers) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.FullName == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "full_name and password are required")
	}

	st, err := h.storage.StudentByName(c.Request().Context(), req.FullName)
	if errors.Is(err, storage.ErrStudentNotFound) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		h.log.Error("login lookup failed", "error", err)
		return fail(c, http.StatusInternalServerError, "login failed")
	}
	if st.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(req.Password)) != nil {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	return c.JSON(http.StatusOK, sessionResponse{ID: st.ID, FullName: st.FullName})
}

// loadStudent resolves the :id path parameter into a stored student.
func (h *handlers) loadStudent(c echo.Context) (storage.Student, bool, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return storage.Student{}, false, fail(c, http.StatusBadRequest, "invalid student id")
	}
	st, err := h.storage.StudentByID(c.Request().Context(), id)
	if errors.Is(err, storage.ErrStudentNotFound) {
		return storage.Student{}, false, fail(c, http.StatusNotFound, "student not found")
	}
	if err != nil {
		h.log.Error("student lookup failed", "error", err)
		return storage.Student{}, false, fail(c, http.StatusInternalServerError, "lookup failed")
	}
	return st, true, nil
}

func (h *handlers) schedule(c echo.Context) error {
	st, ok, err := h.loadStudent(c)
	if !ok {
		return err
	}
	items, err := h.storage.ScheduleForProgram(c.Request().Context(), st.Program, c.QueryParam("day"))
	if err != nil {
		h.log.Error("schedule query failed", "error", err)
		return fail(c, http.StatusInternalServerError, "failed to load schedule")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *handlers) listHomework(c echo.Context) error {
	st, ok, err := h.loadStudent(c)
	if !ok {
		return err
	}
	items, err := h.storage.HomeworkForStudent(c.Request().Context(), st.ID, st.Program)
	if err != nil {
		h.log.Error("homework query failed", "error", err)
		return fail(c, http.StatusInternalServerError, "failed to load homework")
	}
	return c.JSON(http.StatusOK, items)
}

type submitResponse struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Attachment string `json:"attachment,omitempty"`
}

func (h *handlers) submitHomework(c echo.Context) error {
	st, ok, err := h.loadStudent(c)
	if !ok {
		return err
	}

	var title, description, dueDate, attachment string
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.Contains(contentType, "multipart/form-data") {
		title = c.FormValue("title")
		description = c.FormValue("description")
		dueDate = c.FormValue("due_date")
		if file, err := c.FormFile("file"); err == nil {
			attachment, err = h.saveAttachment(file)
			if err != nil {
				h.log.Error("attachment save failed", "error", err)
				return fail(c, http.StatusInternalServerError, "failed to save attachment")
			}
		}
	} else {
		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			DueDate     string `json:"due_date"`
		}
		if err := c.Bind(&body); err != nil {
			return fail(c, http.StatusBadRequest, "invalid request body")
		}
		title, description, dueDate = body.Title, body.Description, body.DueDate
	}

	if title == "" {
		return fail(c, http.StatusBadRequest, "title required")
	}

	id, err := h.storage.AddHomework(c.Request().Context(), storage.HomeworkRecord{
		StudentID:   st.ID,
		Program:     st.Program,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Pushed:      1,
		Attachment:  attachment,
	})
	if err != nil {
		h.log.Error("homework insert failed", "error", err)
		return fail(c, http.StatusInternalServerError, "failed to save homework")
	}
	return c.JSON(http.StatusOK, submitResponse{ID: id, Title: title, Attachment: attachment})
}

// saveAttachment stores an uploaded file under a timestamped, sanitized name
// and returns the stored filename.
func (h *handlers) saveAttachment(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102150405"), sanitizeFilename(file.Filename))
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename strips path components and unsafe characters from an
// uploaded filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(filepath.Clean(name))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "attachment"
	}
	return name
}

func (h *handlers) downloadAttachment(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid homework id")
	}
	rec, err := h.storage.HomeworkByID(c.Request().Context(), id)
	if errors.Is(err, storage.ErrHomeworkNotFound) || (err == nil && rec.Attachment == "") {
		return fail(c, http.StatusNotFound, "attachment not found")
	}
	if err != nil {
		h.log.Error("homework lookup failed", "error", err)
		return fail(c, http.StatusInternalServerError, "lookup failed")
	}

	path := filepath.Join(h.uploadDir, filepath.Base(rec.Attachment))
	if _, err := os.Stat(path); err != nil {
		return fail(c, http.StatusNotFound, "attachment not found")
	}
	return c.Attachment(path, rec.Attachment)
}

func (h *handlers) grades(c echo.Context) error {
	st, ok, err := h.loadStudent(c)
	if !ok {
		return err
	}
	items, err := h.storage.GradesForStudent(c.Request().Context(), st.ID)
	if err != nil {
		h.log.Error("grades query failed", "error", err)
		return fail(c, http.StatusInternalServerError, "failed to load grades")
	}
	return c.JSON(http.StatusOK, items)
}

type pushHomeworkRequest struct {
	Program     string `json:"program"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

func (h *handlers) pushHomework(c echo.Context) error {
	var req pushHomeworkRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Program == "" || req.Title == "" {
		return fail(c, http.StatusBadRequest, "program and title required")
	}

	id, err := h.storage.AddHomework(c.Request().Context(), storage.HomeworkRecord{
		Program:     req.Program,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Pushed:      1,
	})
	if err != nil {
		h.log.Error("push homework failed", "error", err)
		return fail(c, http.StatusInternalServerError, "failed to save homework")
	}
	h.log.Info("homework pushed", "id", id, "program", req.Program)
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "id": id})
}
