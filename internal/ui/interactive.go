package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"langid/internal/classify"
)

// ClassifyFunc returns the result for the current input line.
type ClassifyFunc func(text string) (classify.Result, error)

type interactiveModel struct {
	title    string
	input    textinput.Model
	bar      progress.Model
	classify ClassifyFunc
	result   classify.Result
	err      error
	names    map[string]string
	width    int
}

var (
	winnerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	undStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// NewInteractiveModel returns a model that re-classifies the input line on
// every keystroke and draws one bar per language. names maps codes to
// display names and may be nil.
func NewInteractiveModel(title string, names map[string]string, fn ClassifyFunc) tea.Model {
	in := textinput.New()
	in.Placeholder = "type some text"
	in.Prompt = "> "
	in.CharLimit = 4096
	in.Focus()

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 30

	m := &interactiveModel{
		title:    title,
		input:    in,
		bar:      bar,
		classify: fn,
		names:    names,
		width:    80,
	}
	m.refresh()
	return m
}

func (m *interactiveModel) Init() tea.Cmd { return textinput.Blink }

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlU:
			m.input.SetValue("")
			m.refresh()
			return m, nil
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.input.Width = max(msg.Width-4, 10)
			m.bar.Width = max(msg.Width/3, 10)
		}
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refresh()
	}
	return m, cmd
}

func (m *interactiveModel) refresh() {
	if m.classify == nil {
		return
	}
	m.result, m.err = m.classify(m.input.Value())
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render("error: " + m.err.Error()))
	case m.result.Undetermined():
		b.WriteString(undStyle.Render(fmt.Sprintf("und  %.3f", m.result.Confidence)))
	default:
		b.WriteString(winnerStyle.Render(fmt.Sprintf("%s  %.3f", m.result.Code, m.result.Confidence)))
	}
	b.WriteString("\n\n")

	nameWidth := 0
	for _, s := range m.result.Scores {
		nameWidth = max(nameWidth, runewidth.StringWidth(m.label(s.Code)))
	}
	for _, s := range m.result.Scores {
		label := runewidth.FillRight(m.label(s.Code), nameWidth)
		fmt.Fprintf(&b, "  %s %s %.3f\n", label, m.bar.ViewAs(s.Score), s.Score)
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("esc quit · ctrl+u clear"))
	b.WriteString("\n")
	return b.String()
}

func (m *interactiveModel) label(code string) string {
	if name, ok := m.names[code]; ok && name != "" {
		return code + " " + name
	}
	return code
}
