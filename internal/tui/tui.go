// Package tui shows long reports in a scrollable full-screen pager.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// PagerModel is the Bubble Tea model for the report pager
type PagerModel struct {
	title   string
	content string
	logger  *log.Logger

	viewport viewport.Model

	width       int
	height      int
	initialized bool // viewport sized by the first WindowSizeMsg
	quitting    bool
}

// NewPagerModel creates a pager over content
func NewPagerModel(title, content string, logger *log.Logger) *PagerModel {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	// Properly sized when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent(content)

	return &PagerModel{
		title:    title,
		content:  content,
		logger:   logger.WithPrefix("tui"),
		viewport: vp,
	}
}

// Init initializes the pager
func (m *PagerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages in the pager
func (m *PagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.quitting = true
			return m, tea.Quit
		case "home", "g":
			m.viewport.GotoTop()
			return m, nil
		case "end", "G":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *PagerModel) resize() {
	chrome := lipgloss.Height(m.header()) + lipgloss.Height(m.footer())
	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-chrome, 1)

	if !m.initialized {
		m.viewport.SetContent(m.content)
		m.viewport.GotoTop()
		m.initialized = true
	}
}

// View renders the pager
func (m *PagerModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.initialized {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.header(), m.viewport.View(), m.footer())
}

func (m *PagerModel) header() string {
	return HeaderStyle.Render(m.title)
}

func (m *PagerModel) footer() string {
	info := fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100)
	help := "↑/↓ scroll · g/G top/bottom · q quit"
	gap := max(m.width-lipgloss.Width(info)-lipgloss.Width(help)-2, 1)
	return InfoStyle.Render(help + strings.Repeat(" ", gap) + info)
}

// Quitting reports whether the user asked to leave
func (m *PagerModel) Quitting() bool {
	return m.quitting
}

// Page runs the pager until the user quits or ctx is cancelled.
func Page(ctx context.Context, title, content string, in io.Reader, out io.Writer, logger *log.Logger) error {
	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithOutput(out),
	}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}

	p := tea.NewProgram(NewPagerModel(title, content, logger), opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("pager: %w", err)
	}
	return nil
}
