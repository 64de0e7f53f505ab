package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		press   tea.KeyMsg
	}{
		{"quit", km.Quit, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}},
		{"quit ctrl+c", km.Quit, tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"help", km.Help, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}}},
		{"sync", km.Sync, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}}},
		{"toggle", km.ToggleAuto, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}},
		{"refresh", km.Refresh, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, key.Matches(tt.press, tt.binding))
		})
	}
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 4)
	full := km.FullHelp()
	assert.Len(t, full, 2)
	assert.Len(t, full[0], 3)
}
