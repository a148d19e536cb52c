package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Open    key.Binding
	Back    key.Binding
	Quit    key.Binding

	Toggle   key.Binding
	Next     key.Binding
	Previous key.Binding
	Close    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextTab: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "category")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "category")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),

		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Next:     key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next")),
		Previous: key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "previous")),
		Close:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "close")),
	}
}

// screenHelp adapts a fixed list of bindings to help.KeyMap.
type screenHelp []key.Binding

func (s screenHelp) ShortHelp() []key.Binding  { return s }
func (s screenHelp) FullHelp() [][]key.Binding { return [][]key.Binding{s} }

func (k keyMap) forScreen(s screen) screenHelp {
	switch s {
	case screenPreview:
		start := k.Open
		start.SetHelp("enter", "start")
		return screenHelp{start, k.Back, k.Quit}
	case screenPlayer:
		return screenHelp{k.Toggle, k.Next, k.Previous, k.Close}
	case screenComplete:
		done := k.Open
		done.SetHelp("enter", "done")
		return screenHelp{done}
	default:
		return screenHelp{k.Up, k.Down, k.NextTab, k.Open, k.Quit}
	}
}
