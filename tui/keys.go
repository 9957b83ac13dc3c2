package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"tasklist/config"
)

type keyMap struct {
	Add             key.Binding
	Edit            key.Binding
	Toggle          key.Binding
	Delete          key.Binding
	Clear           key.Binding
	FilterAll       key.Binding
	FilterActive    key.Binding
	FilterCompleted key.Binding
	NextFilter      key.Binding
	Copy            key.Binding
	Up              key.Binding
	Down            key.Binding
	Help            key.Binding
	Quit            key.Binding
}

func newKeyMap(k config.Keymap) keyMap {
	return keyMap{
		Add:             binding(k.Add, "add"),
		Edit:            binding(k.Edit, "edit"),
		Toggle:          binding(k.Toggle, "toggle"),
		Delete:          binding(k.Delete, "delete"),
		Clear:           binding(k.Clear, "clear shown"),
		FilterAll:       binding(k.FilterAll, "all"),
		FilterActive:    binding(k.FilterActive, "active"),
		FilterCompleted: binding(k.FilterCompleted, "completed"),
		NextFilter:      binding(k.NextFilter, "next filter"),
		Copy:            binding(k.Copy, "copy shown"),
		Up:              binding(k.Up, "up", "up"),
		Down:            binding(k.Down, "down", "down"),
		Help:            binding(k.Help, "help"),
		Quit:            binding(k.Quit, "quit", "ctrl+c"),
	}
}

// binding builds a key binding for a configured key plus optional aliases.
// Space may be configured either as " " or "space".
func binding(configured, desc string, aliases ...string) key.Binding {
	keys := []string{configured}
	label := configured
	if configured == " " || configured == "space" {
		keys = []string{" ", "space"}
		label = "space"
	}
	keys = append(keys, aliases...)
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Toggle, k.Delete, k.NextFilter, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Add, k.Edit},
		{k.Toggle, k.Delete, k.Clear, k.Copy},
		{k.FilterAll, k.FilterActive, k.FilterCompleted, k.NextFilter},
		{k.Help, k.Quit},
	}
}
