package review

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type KeyMap struct {
	Next key.Binding
	Prev key.Binding
	Quit key.Binding
}

func NewKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p", "previous"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

// Model is the pager over a fixed, in-memory sequence of card files. The
// cursor clamps at both ends rather than wrapping.
type Model struct {
	Files  []File
	Index  int
	KeyMap KeyMap
}

// NewModel creates a pager positioned on the first file.
func NewModel(files []File) Model {
	return Model{Files: files, KeyMap: NewKeyMap()}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.KeyMap.Next):
		if m.Index < len(m.Files)-1 {
			m.Index++
		}
	case key.Matches(keyMsg, m.KeyMap.Prev):
		if m.Index > 0 {
			m.Index--
		}
	case key.Matches(keyMsg, m.KeyMap.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.Files) == 0 {
		return "No card files found.\n"
	}
	f := m.Files[m.Index]

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(fmt.Sprintf("[%d/%d] %s", m.Index+1, len(m.Files), f.Name)))
	if f.Err != nil {
		fmt.Fprintf(&b, "%s\n\n", errStyle.Render(fmt.Sprintf("Failed to load %s: %v", f.Name, f.Err)))
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Question:"), f.Card.Question)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Correct Answer:"), f.Card.CorrectAnswer)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("AI Answer:"), f.Card.AIAnswer)
	fmt.Fprintf(&b, "\n%s\n", helpStyle.Render("(n)ext, (p)revious, (q)uit"))
	return b.String()
}
