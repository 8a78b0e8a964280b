package collect

import "github.com/charmbracelet/bubbles/key"

// KeyMap 表单按键
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding
	Submit key.Binding
	Quit   key.Binding
}

// DefaultKeyMap 默认按键
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "上一天"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "下一天"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "上一班"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l", "tab"),
			key.WithHelp("→/l", "下一班"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space", "x"),
			key.WithHelp("空格/x", "勾选"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "确认"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "取消"),
		),
	}
}

// ShortHelp 实现 help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Submit, k.Quit}
}

// FullHelp 实现 help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Toggle, k.Submit, k.Quit},
	}
}
