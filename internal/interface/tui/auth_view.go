package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/tickr/internal/core/auth"
)

const (
	signInTab = iota
	signUpTab
)

const (
	authName = iota
	authEmail
	authPassword
	authFieldCount
)

var (
	authLabels = [authFieldCount]string{"Name", "Email", "Password"}
	// Keys used by auth.ValidationErrors
	authKeys = [authFieldCount]string{"name", "email", "password"}
)

type authForm struct {
	tab     int
	inputs  []textinput.Model
	focus   int
	errs    auth.ValidationErrors
	failure string
	busy    bool
}

func newAuthForm() authForm {
	f := authForm{inputs: make([]textinput.Model, authFieldCount)}
	f.inputs[authName] = newInput("Your name", 100)
	f.inputs[authEmail] = newInput("you@example.com", 254)
	f.inputs[authPassword] = newInput("At least 8 characters", 128)
	f.inputs[authPassword].EchoMode = textinput.EchoPassword
	f.inputs[authPassword].EchoCharacter = '•'
	f.focus = authEmail
	f.inputs[authEmail].Focus()
	return f
}

// fields lists the inputs shown on the current tab, in order
func (f authForm) fields() []int {
	if f.tab == signUpTab {
		return []int{authName, authEmail, authPassword}
	}
	return []int{authEmail, authPassword}
}

func (f *authForm) move(delta int) {
	fields := f.fields()
	pos := 0
	for i, field := range fields {
		if field == f.focus {
			pos = i
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	f.inputs[f.focus].Blur()
	f.focus = fields[pos]
	f.inputs[f.focus].Focus()
}

func (f *authForm) switchTab() {
	f.tab = 1 - f.tab
	f.errs = nil
	f.failure = ""
	f.inputs[f.focus].Blur()
	f.focus = f.fields()[0]
	f.inputs[f.focus].Focus()
}

func (f authForm) last() bool {
	fields := f.fields()
	return f.focus == fields[len(fields)-1]
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.session != nil {
		return m.updateProfile(msg)
	}
	if m.authForm.busy {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.mode = mainView
		return m, nil

	case "ctrl+t":
		m.authForm.switchTab()
		return m, nil

	case "tab", "down":
		m.authForm.move(1)
		return m, nil

	case "shift+tab", "up":
		m.authForm.move(-1)
		return m, nil

	case "enter":
		if !m.authForm.last() {
			m.authForm.move(1)
			return m, nil
		}
		return m.submitAuth()
	}

	var cmd tea.Cmd
	m.authForm.inputs[m.authForm.focus], cmd = m.authForm.inputs[m.authForm.focus].Update(msg)
	return m, cmd
}

func (m Model) submitAuth() (tea.Model, tea.Cmd) {
	f := &m.authForm
	f.busy = true
	f.errs = nil
	f.failure = ""

	email := strings.TrimSpace(f.inputs[authEmail].Value())
	password := f.inputs[authPassword].Value()
	if f.tab == signUpTab {
		return m, signUp(m.holder, auth.SignUpRequest{
			Name:     strings.TrimSpace(f.inputs[authName].Value()),
			Email:    email,
			Password: password,
		})
	}
	return m, signIn(m.holder, auth.SignInRequest{Email: email, Password: password})
}

func (m Model) updateProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = mainView
		return m, nil
	case "o":
		return m, signOut(m.holder)
	case "y":
		m.mode = mainView
		return m.startSync()
	}
	return m, nil
}

func (m Model) handleAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	m.authForm.busy = false

	if msg.err != nil {
		if msg.action == "signout" {
			return m, m.showError("Sign out failed", msg.err)
		}
		var verrs auth.ValidationErrors
		switch {
		case errors.As(msg.err, &verrs):
			m.authForm.errs = verrs
		case errors.Is(msg.err, auth.ErrInvalidCredentials):
			m.authForm.failure = "Invalid email or password"
		case errors.Is(msg.err, auth.ErrUserExists):
			m.authForm.failure = "An account with this email already exists"
		default:
			m.authForm.failure = msg.err.Error()
		}
		return m, nil
	}

	m.mode = mainView
	if msg.action == "signout" {
		m.session = nil
		return m, m.showToast("Signed out")
	}
	m.session = msg.session
	m.authForm = newAuthForm()
	return m, m.showToast("Signed in as " + displayName(m.session))
}

func displayName(s *auth.Session) string {
	if s.User.Name != "" {
		return s.User.Name
	}
	return s.User.Email
}

func (m Model) viewProfileLine() string {
	if m.holder == nil {
		return ""
	}
	if m.session == nil {
		return helpStyle.Render("not signed in (u)")
	}
	return profileStyle.Render("● " + displayName(m.session))
}

func (m Model) viewAuth() string {
	var b strings.Builder
	if m.session != nil {
		s := m.session
		b.WriteString(titleStyle.Render("Account"))
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render("Name") + s.User.Name + "\n")
		b.WriteString(labelStyle.Render("Email") + s.User.Email + "\n")
		if !s.Session.ExpiresAt.IsZero() {
			b.WriteString(labelStyle.Render("Session") + "expires " + humanize.Time(s.Session.ExpiresAt) + "\n")
		}
		if m.toast != "" {
			b.WriteString("\n" + m.viewToast() + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("o sign out • y sync now • esc back"))
		return b.String()
	}

	tabs := [2]string{"Sign in", "Sign up"}
	for i, t := range tabs {
		if i == m.authForm.tab {
			b.WriteString(activeTabStyle.Render(t))
		} else {
			b.WriteString(inactiveTabStyle.Render(t))
		}
		b.WriteString("   ")
	}
	b.WriteString("\n\n")

	for _, field := range m.authForm.fields() {
		b.WriteString(labelStyle.Render(authLabels[field]))
		b.WriteString(m.authForm.inputs[field].View())
		b.WriteString("\n")
		if msg, ok := m.authForm.errs[authKeys[field]]; ok {
			b.WriteString(labelStyle.Render(""))
			b.WriteString(errorStyle.Render(msg))
			b.WriteString("\n")
		}
	}

	if m.authForm.failure != "" {
		b.WriteString("\n" + errorStyle.Render(m.authForm.failure) + "\n")
	}
	if m.authForm.busy {
		b.WriteString("\n" + helpStyle.Render("⏳ Working...") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab next field • enter submit • ctrl+t switch sign in/up • esc back"))
	return b.String()
}
