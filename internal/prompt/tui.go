package prompt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// TUI is the bubbletea Prompter.
type TUI struct {
	In  io.Reader
	Out io.Writer
}

func (t *TUI) run(m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m, tea.WithInput(t.In), tea.WithOutput(t.Out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return final, nil
}

func (t *TUI) Select(title string, options []Option, def string) (string, error) {
	if len(options) == 0 {
		return "", ErrCancelled
	}
	final, err := t.run(&selectModel{title: title, options: options, cursor: indexOf(options, def)})
	if err != nil {
		return "", err
	}
	m := final.(*selectModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return options[m.cursor].Value, nil
}

func (t *TUI) MultiSelect(title string, options []Option, defaults []string) ([]string, error) {
	if len(options) == 0 {
		return nil, nil
	}
	checked := make(map[int]bool, len(defaults))
	for _, d := range defaults {
		for i, o := range options {
			if o.Value == d {
				checked[i] = true
			}
		}
	}
	final, err := t.run(&multiModel{title: title, options: options, checked: checked})
	if err != nil {
		return nil, err
	}
	m := final.(*multiModel)
	if m.cancelled {
		return nil, ErrCancelled
	}
	var out []string
	for i, o := range options {
		if m.checked[i] {
			out = append(out, o.Value)
		}
	}
	return out, nil
}

func (t *TUI) Input(title, def string, validate Validator) (string, error) {
	return t.input(title, def, validate, false)
}

func (t *TUI) Password(title string, validate Validator) (string, error) {
	return t.input(title, "", validate, true)
}

func (t *TUI) input(title, def string, validate Validator, secret bool) (string, error) {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = def
	ti.CharLimit = 1024
	ti.Width = 60
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
	}
	ti.Focus()

	final, err := t.run(&inputModel{title: title, input: ti, def: def, validate: validate, secret: secret})
	if err != nil {
		return "", err
	}
	m := final.(*inputModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.value, nil
}

func (t *TUI) Confirm(title string, def bool) (bool, error) {
	final, err := t.run(&confirmModel{title: title, value: def})
	if err != nil {
		return false, err
	}
	m := final.(*confirmModel)
	if m.cancelled {
		return false, ErrCancelled
	}
	return m.value, nil
}

// --- select ---

type selectModel struct {
	title     string
	options   []Option
	cursor    int
	done      bool
	cancelled bool
}

func (m *selectModel) Init() tea.Cmd { return nil }

func (m *selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = (m.cursor - 1 + len(m.options)) % len(m.options)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(m.options)
	case "enter":
		m.done = true
		return m, tea.Quit
	default:
		for i, o := range m.options {
			if o.Key != "" && strings.EqualFold(o.Key, key.String()) {
				m.cursor = i
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *selectModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("? "+m.title) + "\n")
	if m.done {
		b.WriteString("  " + answerStyle.Render(m.options[m.cursor].Label) + "\n")
		return b.String()
	}
	if m.cancelled {
		return b.String()
	}
	for i, o := range m.options {
		line := o.Label
		if o.Key != "" {
			line = o.Key + ". " + line
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("❯ " + line))
		} else {
			b.WriteString("  " + line)
		}
		if o.Hint != "" {
			b.WriteString(" " + hintStyle.Render("- "+o.Hint))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// --- multi select ---

type multiModel struct {
	title     string
	options   []Option
	cursor    int
	checked   map[int]bool
	done      bool
	cancelled bool
}

func (m *multiModel) Init() tea.Cmd { return nil }

func (m *multiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = (m.cursor - 1 + len(m.options)) % len(m.options)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(m.options)
	case " ":
		m.checked[m.cursor] = !m.checked[m.cursor]
	case "a":
		all := len(m.selected()) == len(m.options)
		for i := range m.options {
			m.checked[i] = !all
		}
	case "i":
		for i := range m.options {
			m.checked[i] = !m.checked[i]
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *multiModel) selected() []string {
	var labels []string
	for i, o := range m.options {
		if m.checked[i] {
			labels = append(labels, o.Label)
		}
	}
	return labels
}

func (m *multiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("? "+m.title) + " " + hintStyle.Render("(space: toggle, a: all, i: invert, enter: confirm)") + "\n")
	if m.done {
		b.WriteString("  " + answerStyle.Render(strings.Join(m.selected(), ", ")) + "\n")
		return b.String()
	}
	if m.cancelled {
		return b.String()
	}
	for i, o := range m.options {
		box := "◯"
		if m.checked[i] {
			box = selectedStyle.Render("◉")
		}
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("❯ ")
		}
		b.WriteString(prefix + box + " " + o.Label)
		if o.Hint != "" {
			b.WriteString(" " + hintStyle.Render("- "+o.Hint))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// --- text input ---

type inputModel struct {
	title     string
	input     textinput.Model
	def       string
	validate  Validator
	secret    bool
	value     string
	errMsg    string
	done      bool
	cancelled bool
}

func (m *inputModel) Init() tea.Cmd { return textinput.Blink }

func (m *inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			v := strings.TrimSpace(m.input.Value())
			if v == "" {
				v = m.def
			}
			if m.validate != nil {
				if err := m.validate(v); err != nil {
					if v == "" {
						m.cancelled = true
						return m, tea.Quit
					}
					m.errMsg = err.Error()
					return m, nil
				}
			}
			m.value = v
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *inputModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("? "+m.title) + "\n")
	if m.done {
		shown := m.value
		if m.secret {
			shown = Mask(m.value)
		}
		b.WriteString("  " + answerStyle.Render(shown) + "\n")
		return b.String()
	}
	if m.cancelled {
		return b.String()
	}
	b.WriteString(m.input.View() + "\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(">> "+m.errMsg) + "\n")
	}
	return b.String()
}

// --- confirm ---

type confirmModel struct {
	title     string
	value     bool
	done      bool
	cancelled bool
}

func (m *confirmModel) Init() tea.Cmd { return nil }

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "y", "Y":
		m.value, m.done = true, true
		return m, tea.Quit
	case "n", "N":
		m.value, m.done = false, true
		return m, tea.Quit
	case "left", "right", "tab", "h", "l":
		m.value = !m.value
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *confirmModel) View() string {
	hint := "(y/N)"
	if m.value {
		hint = "(Y/n)"
	}
	line := titleStyle.Render("? "+m.title) + " " + hintStyle.Render(hint)
	if m.done {
		answer := "No"
		if m.value {
			answer = "Yes"
		}
		return line + " " + answerStyle.Render(answer) + "\n"
	}
	return line + "\n"
}

// Mask hides all but the first and last four characters of a secret.
func Mask(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
