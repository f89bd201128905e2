package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	loginFieldName = iota
	loginFieldPassword
	loginFieldProgram
	loginFieldYear
	loginFieldCount
)

// loginForm collects credentials, switching between sign-in and
// registration layouts with the same field set.
type loginForm struct {
	inputs   []textinput.Model
	focus    int
	register bool
	errText  string
}

// loginSubmission is a validated form result ready for the API call.
type loginSubmission struct {
	register bool
	fullName string
	program  string
	year     int
	password string
}

func newLoginForm(lastFullName string) *loginForm {
	f := &loginForm{inputs: make([]textinput.Model, loginFieldCount)}

	name := textinput.New()
	name.Placeholder = "Full name"
	name.CharLimit = 120
	name.SetValue(lastFullName)
	f.inputs[loginFieldName] = name

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 120
	f.inputs[loginFieldPassword] = password

	program := textinput.New()
	program.Placeholder = "Program"
	program.CharLimit = 120
	f.inputs[loginFieldProgram] = program

	year := textinput.New()
	year.Placeholder = "Year"
	year.CharLimit = 2
	f.inputs[loginFieldYear] = year

	return f
}

func (f *loginForm) focusCmd() tea.Cmd {
	return f.setFocus(loginFieldName)
}

// visibleFields reports how many inputs the current mode shows.
func (f *loginForm) visibleFields() int {
	if f.register {
		return loginFieldCount
	}
	return 2
}

func (f *loginForm) setFocus(i int) tea.Cmd {
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

func (f *loginForm) cycleFocus(delta int) tea.Cmd {
	n := f.visibleFields()
	next := (f.focus + delta + n) % n
	return f.setFocus(next)
}

func (f *loginForm) toggleRegister() tea.Cmd {
	f.register = !f.register
	f.errText = ""
	if !f.register && f.focus >= f.visibleFields() {
		return f.setFocus(loginFieldName)
	}
	return nil
}

func (f *loginForm) setError(err error) {
	f.errText = err.Error()
}

// submission validates the current field values.
func (f *loginForm) submission() (loginSubmission, error) {
	sub := loginSubmission{
		register: f.register,
		fullName: strings.TrimSpace(f.inputs[loginFieldName].Value()),
		password: f.inputs[loginFieldPassword].Value(),
	}
	if sub.fullName == "" || sub.password == "" {
		return sub, errors.New("full name and password are required")
	}
	if !f.register {
		return sub, nil
	}
	sub.program = strings.TrimSpace(f.inputs[loginFieldProgram].Value())
	year, err := strconv.Atoi(strings.TrimSpace(f.inputs[loginFieldYear].Value()))
	if sub.program == "" || err != nil || year < 1 {
		return sub, errors.New("program and a numeric year are required")
	}
	sub.year = year
	return sub, nil
}

// update forwards a message to the focused input.
func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(f.inputs))
	for i := range f.inputs {
		f.inputs[i], cmds[i] = f.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}
