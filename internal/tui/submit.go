package tui

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"studentdesk/internal/api"
)

const (
	submitFieldTitle = iota
	submitFieldDescription
	submitFieldDueDate
	submitFieldFile
	submitFieldCount
)

// submitForm collects a homework submission, with an optional attachment
// given as a local file path.
type submitForm struct {
	inputs  []textinput.Model
	focus   int
	errText string
}

func newSubmitForm() *submitForm {
	f := &submitForm{inputs: make([]textinput.Model, submitFieldCount)}

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200
	f.inputs[submitFieldTitle] = title

	description := textinput.New()
	description.Placeholder = "Description"
	description.CharLimit = 500
	f.inputs[submitFieldDescription] = description

	dueDate := textinput.New()
	dueDate.Placeholder = "Due date (2006-01-02)"
	dueDate.CharLimit = 32
	f.inputs[submitFieldDueDate] = dueDate

	file := textinput.New()
	file.Placeholder = "Attachment path (optional)"
	file.CharLimit = 400
	f.inputs[submitFieldFile] = file

	return f
}

func (f *submitForm) focusCmd() tea.Cmd {
	return f.setFocus(submitFieldTitle)
}

func (f *submitForm) setFocus(i int) tea.Cmd {
	f.focus = i
	var cmd tea.Cmd
	for idx := range f.inputs {
		if idx == i {
			cmd = f.inputs[idx].Focus()
		} else {
			f.inputs[idx].Blur()
		}
	}
	return cmd
}

func (f *submitForm) cycleFocus(delta int) tea.Cmd {
	next := (f.focus + delta + submitFieldCount) % submitFieldCount
	return f.setFocus(next)
}

// submission validates the form. The attachment path must point at an
// existing file when set.
func (f *submitForm) submission() (api.Submission, error) {
	sub := api.Submission{
		Title:       strings.TrimSpace(f.inputs[submitFieldTitle].Value()),
		Description: strings.TrimSpace(f.inputs[submitFieldDescription].Value()),
		DueDate:     strings.TrimSpace(f.inputs[submitFieldDueDate].Value()),
		FilePath:    strings.TrimSpace(f.inputs[submitFieldFile].Value()),
	}
	if sub.Title == "" {
		return sub, errors.New("title is required")
	}
	if sub.FilePath != "" {
		if _, err := os.Stat(sub.FilePath); err != nil {
			return sub, errors.New("attachment file not found")
		}
	}
	return sub, nil
}

func (f *submitForm) update(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(f.inputs))
	for i := range f.inputs {
		f.inputs[i], cmds[i] = f.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}
