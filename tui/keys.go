package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play       key.Binding
	Tap        key.Binding
	Faster     key.Binding
	Slower     key.Binding
	Next       key.Binding
	Prev       key.Binding
	NextSong   key.Binding
	PrevSong   key.Binding
	Click      key.Binding
	Strum      key.Binding
	ClickUp    key.Binding
	ClickDown  key.Binding
	StrumUp    key.Binding
	StrumDown  key.Binding
	MasterUp   key.Binding
	MasterDown key.Binding
	Reset      key.Binding
	Quit       key.Binding
}

func bind(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

var keys = keyMap{
	Play:       bind("play/pause", "space", " ", "p"),
	Tap:        bind("tap", "enter", "t"),
	Faster:     bind("tempo +5", "+", "="),
	Slower:     bind("tempo -5", "-", "_"),
	Next:       bind("next pattern", "n"),
	Prev:       bind("prev pattern", "N"),
	NextSong:   bind("next song", "g"),
	PrevSong:   bind("prev song", "G"),
	Click:      bind("click on/off", "c"),
	Strum:      bind("strum on/off", "s"),
	ClickUp:    bind("click vol +", "]"),
	ClickDown:  bind("click vol -", "["),
	StrumUp:    bind("strum vol +", "}"),
	StrumDown:  bind("strum vol -", "{"),
	MasterUp:   bind("master vol +", "."),
	MasterDown: bind("master vol -", ","),
	Reset:      bind("reset stats", "r"),
	Quit:       bind("quit", "q", "ctrl+c"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Tap, k.Faster, k.Slower, k.Next, k.NextSong, k.Click, k.Strum, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Tap, k.Reset, k.Quit},
		{k.Faster, k.Slower, k.Next, k.Prev, k.NextSong, k.PrevSong},
		{k.Click, k.Strum, k.ClickUp, k.ClickDown},
		{k.StrumUp, k.StrumDown, k.MasterUp, k.MasterDown},
	}
}
