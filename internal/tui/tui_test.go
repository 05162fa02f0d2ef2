package tui

import (
	"fmt"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagerModel(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}) // Quiet logger for tests

	lines := make([]string, 100)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %03d", i)
	}
	content := strings.Join(lines, "\n")

	t.Run("waits for dimensions", func(t *testing.T) {
		m := NewPagerModel("alice", content, logger)
		assert.Equal(t, "Loading...", m.View())
	})

	t.Run("renders the top after sizing", func(t *testing.T) {
		m := NewPagerModel("alice", content, logger)
		m.Update(tea.WindowSizeMsg{Width: 60, Height: 12})

		view := m.View()
		assert.Contains(t, view, "alice")
		assert.Contains(t, view, "line 000")
		assert.NotContains(t, view, "line 050")
		assert.Contains(t, view, "q quit")
	})

	t.Run("jumps to the bottom", func(t *testing.T) {
		m := NewPagerModel("alice", content, logger)
		m.Update(tea.WindowSizeMsg{Width: 60, Height: 12})
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})

		view := m.View()
		assert.Contains(t, view, "line 099")
		assert.Contains(t, view, "100%")

		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
		assert.Contains(t, m.View(), "line 000")
	})

	t.Run("q quits", func(t *testing.T) {
		m := NewPagerModel("alice", content, logger)
		m.Update(tea.WindowSizeMsg{Width: 60, Height: 12})

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.True(t, m.Quitting())
		assert.Empty(t, m.View())
	})

	t.Run("esc quits", func(t *testing.T) {
		m := NewPagerModel("alice", content, nil)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		require.NotNil(t, cmd)
		assert.True(t, m.Quitting())
	})
}
