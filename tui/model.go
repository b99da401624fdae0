package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"strum-trainer/debug"
	"strum-trainer/evaluate"
	"strum-trainer/midi"
	"strum-trainer/pattern"
	"strum-trainer/session"
	"strum-trainer/song"
	"strum-trainer/theme"
	"strum-trainer/widgets"
)

const (
	// accentLevel marks steps drawn with emphasis
	accentLevel = 0.7

	stripWidth = 16

	volumeStep = 0.1
)

type Model struct {
	Session   *session.Session
	DeviceMgr *midi.DeviceManager // may be nil
	Theme     *theme.Theme

	// OnPattern is called after the learner switches pattern
	OnPattern func(p *pattern.Schedule)
	// OnSong is called after the learner picks a song
	OnSong func(sg *song.Song)

	patterns []*pattern.Schedule
	idx      int
	songs    []*song.Song
	songIdx  int // -1 outside song mode
	help     help.Model
	last     session.Event
	result   *evaluate.StepResult
	recent   []float64 // newest last, at most stripWidth
	devices  map[string]bool
	quitting bool
}

type StepMsg session.Event

type DeviceEventMsg midi.DeviceEvent

func NewModel(sess *session.Session, patterns []*pattern.Schedule, songs []*song.Song, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	m := Model{
		Session:   sess,
		DeviceMgr: deviceMgr,
		Theme:     th,
		patterns:  patterns,
		songs:     songs,
		songIdx:   -1,
		help:      help.New(),
		devices:   map[string]bool{},
	}
	m.syncIndexes()
	return m
}

// syncIndexes points the pattern and song cursors at what the session plays
func (m *Model) syncIndexes() {
	if cur := m.Session.Pattern(); cur != nil {
		for i, p := range m.patterns {
			if p.ID == cur.ID {
				m.idx = i
			}
		}
	}
	m.songIdx = -1
	if sg := m.Session.Song(); sg != nil {
		for i, s := range m.songs {
			if s.ID == sg.ID {
				m.songIdx = i
			}
		}
	}
}

func ListenForSteps(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		return StepMsg(<-sess.Events())
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForSteps(m.Session),
		ListenForDevices(m.DeviceMgr),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			m.Session.Stop()
			return m, tea.Quit

		case key.Matches(msg, keys.Play):
			m.Session.Toggle()
			if !m.Session.Running() {
				m.result = nil
			}

		case key.Matches(msg, keys.Tap):
			m.Session.Tap()

		case key.Matches(msg, keys.Faster):
			m.Session.AdjustTempo(5)

		case key.Matches(msg, keys.Slower):
			m.Session.AdjustTempo(-5)

		case key.Matches(msg, keys.Next):
			m.selectPattern(m.idx + 1)

		case key.Matches(msg, keys.Prev):
			m.selectPattern(m.idx - 1)

		case key.Matches(msg, keys.NextSong):
			m.selectSong(m.songIdx + 1)

		case key.Matches(msg, keys.PrevSong):
			if m.songIdx < 0 {
				m.selectSong(len(m.songs) - 1)
			} else {
				m.selectSong(m.songIdx - 1)
			}

		case key.Matches(msg, keys.Click):
			m.Session.ToggleChannel(session.ChannelClick)

		case key.Matches(msg, keys.Strum):
			m.Session.ToggleChannel(session.ChannelStrum)

		case key.Matches(msg, keys.ClickUp):
			m.Session.AdjustVolume(session.ChannelClick, volumeStep)

		case key.Matches(msg, keys.ClickDown):
			m.Session.AdjustVolume(session.ChannelClick, -volumeStep)

		case key.Matches(msg, keys.StrumUp):
			m.Session.AdjustVolume(session.ChannelStrum, volumeStep)

		case key.Matches(msg, keys.StrumDown):
			m.Session.AdjustVolume(session.ChannelStrum, -volumeStep)

		case key.Matches(msg, keys.MasterUp):
			m.Session.AdjustVolume(session.ChannelMaster, volumeStep)

		case key.Matches(msg, keys.MasterDown):
			m.Session.AdjustVolume(session.ChannelMaster, -volumeStep)

		case key.Matches(msg, keys.Reset):
			m.Session.ResetStats()
			m.result = nil
			m.recent = nil
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case StepMsg:
		m.last = session.Event(msg)
		if msg.Result != nil {
			m.result = msg.Result
			m.recent = append(m.recent, msg.Result.DeviationMs)
			if len(m.recent) > stripWidth {
				m.recent = m.recent[len(m.recent)-stripWidth:]
			}
		}
		return m, ListenForSteps(m.Session)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		debug.Log("tui", "tap input %s %s", event.ID, event.Type)
		if event.Type == midi.DeviceConnected {
			m.devices[event.ID] = true

			// Feed device onsets straight to the evaluator
			sess := m.Session
			go func() {
				for tap := range event.Controller.Taps() {
					sess.TapAt(tap.Timestamp)
				}
			}()
		} else {
			delete(m.devices, event.ID)
		}
		if m.DeviceMgr != nil {
			// the manager's table is authoritative, events may have been missed
			m.devices = map[string]bool{}
			for id := range m.DeviceMgr.Controllers() {
				m.devices[id] = true
			}
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

// selectPattern wraps i into the pattern list and restarts playback if it was running
func (m *Model) selectPattern(i int) {
	if len(m.patterns) == 0 {
		return
	}
	n := len(m.patterns)
	m.idx = ((i % n) + n) % n
	p := m.patterns[m.idx]

	running := m.Session.Running()
	if running {
		m.Session.Stop()
	}
	m.Session.SetPattern(p)
	m.songIdx = -1
	m.clearRun()
	if running {
		m.Session.Start()
	}
	if m.OnPattern != nil {
		m.OnPattern(p)
	}
}

// selectSong wraps i into the song list and loads that song
func (m *Model) selectSong(i int) {
	if len(m.songs) == 0 {
		return
	}
	n := len(m.songs)
	sg := m.songs[((i%n)+n)%n]

	running := m.Session.Running()
	if running {
		m.Session.Stop()
	}
	if err := m.Session.LoadSong(sg); err != nil {
		debug.Log("tui", "load song: %v", err)
	}
	m.syncIndexes()
	m.clearRun()
	if running {
		m.Session.Start()
	}
	if m.OnSong != nil && m.Session.Song() == sg {
		m.OnSong(sg)
	}
}

func (m *Model) clearRun() {
	m.last = session.Event{}
	m.result = nil
	m.recent = nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	p := m.Session.Pattern()
	if p == nil {
		return "no pattern loaded\n"
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())

	playState := "STOP"
	if m.Session.Running() {
		playState = "PLAY"
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(fmt.Sprintf("strum-trainer  %s  %3dbpm  %s  %s",
		playState, m.Session.Tempo(), p.TimeSig, p.Name)))
	if len(m.devices) > 0 {
		out.WriteString(dimStyle.Render("  tap: " + strings.Join(m.deviceNames(), ",")))
	}
	out.WriteString("\n\n")

	if sg := m.Session.Song(); sg != nil {
		out.WriteString(m.songView(sg))
		out.WriteString("\n\n")
	}

	out.WriteString(m.stepRow(p))
	out.WriteString("\n")
	out.WriteString(m.playheadRow(p))
	out.WriteString("\n\n")

	chord := m.last.Chord
	if chord == "" {
		chord = m.Session.ChordForBar(0)
	}
	out.WriteString(fgStyle.Render(fmt.Sprintf("bar %-4d chord %-4s", m.last.Bar+1, chord)))
	out.WriteString("  ")
	out.WriteString(m.deviationView())
	out.WriteString("\n")

	out.WriteString(m.stripView())
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(m.mixerView()))
	out.WriteString("\n")

	stats := m.Session.Stats()
	out.WriteString(dimStyle.Render(stats.String()))
	out.WriteString("\n")
	out.WriteString(fgStyle.Render(stats.Verdict.Hint()))
	if p.Notes != "" {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(p.Notes))
	}
	out.WriteString("\n\n")
	out.WriteString(m.help.View(keys))

	return out.String()
}

func (m Model) stepRow(p *pattern.Schedule) string {
	var cells []string
	for i := 0; i < p.StepsPerBar; i++ {
		st, ok := p.StepAt(uint64(i))
		r := m.Theme.Symbols.Empty
		style := lipgloss.NewStyle().Foreground(m.Theme.Muted())
		if ok {
			r = m.Theme.StepRune(st.Dir.String())
			style = lipgloss.NewStyle().Foreground(m.Theme.FG())
			if st.Accent >= accentLevel && st.Dir != pattern.Rest {
				style = style.Foreground(m.Theme.Accent()).Bold(true)
			}
		}
		if m.Session.Running() && i == m.last.BarStep {
			style = style.Foreground(m.Theme.Active())
		}
		cells = append(cells, style.Render(string(r)))
	}
	return strings.Join(cells, " ")
}

func (m Model) playheadRow(p *pattern.Schedule) string {
	if !m.Session.Running() {
		return ""
	}
	row := make([]rune, 2*p.StepsPerBar-1)
	for i := range row {
		row[i] = ' '
	}
	if pos := 2 * m.last.BarStep; pos >= 0 && pos < len(row) {
		row[pos] = m.Theme.Symbols.Playhead
	}
	return lipgloss.NewStyle().Foreground(m.Theme.Active()).Render(string(row))
}

func (m Model) deviationView() string {
	if m.result == nil {
		return lipgloss.NewStyle().Foreground(m.Theme.Muted()).Render("dev   --")
	}
	dev := m.result.DeviationMs
	mark := m.Theme.Symbols.Late
	if dev < 0 {
		mark = m.Theme.Symbols.Early
	}
	return lipgloss.NewStyle().
		Foreground(m.Theme.Deviation(dev)).
		Render(fmt.Sprintf("dev %+6.1fms %c", dev, mark))
}

// songView names the song and lists its sections with the current one lit
func (m Model) songView(sg *song.Song) string {
	title := lipgloss.NewStyle().Foreground(m.Theme.FG()).Render(fmt.Sprintf("%s - %s", sg.Title, sg.Artist))

	current := 0
	if idx, _, ok := sg.SectionForBar(m.last.Bar); ok {
		current = idx
	}
	var parts []string
	for i, sec := range sg.Sections {
		label := sec.Name
		if sec.Repeat > 1 {
			label += fmt.Sprintf(" x%d", sec.Repeat)
		}
		style := lipgloss.NewStyle().Foreground(m.Theme.Muted())
		if i == current {
			style = lipgloss.NewStyle().Foreground(m.Theme.Active()).Bold(true)
			label = "[" + label + "]"
		}
		parts = append(parts, style.Render(label))
	}
	return title + "  " + strings.Join(parts, " ")
}

func (m Model) mixerView() string {
	v := m.Session.Volume()
	onOff := func(on bool) string {
		if on {
			return "on"
		}
		return "off"
	}
	return fmt.Sprintf("click %3.0f%% %-3s  strum %3.0f%% %-3s  master %3.0f%%",
		v.Click*100, onOff(v.ClickEnabled), v.Strum*100, onOff(v.StrumEnabled), v.Master*100)
}

// stripView shows the latest deviations as pads with a colour legend
func (m Model) stripView() string {
	colors := make([][3]uint8, len(m.recent))
	for i, dev := range m.recent {
		colors[i] = m.Theme.DeviationRGB(dev)
	}
	legend := []string{
		widgets.RenderLegendItem(m.Theme.DeviationRGB(0), "on time"),
		widgets.RenderLegendItem(m.Theme.DeviationRGB(theme.WorstMs/2), fmt.Sprintf("%.0fms", theme.WorstMs/2)),
		widgets.RenderLegendItem(m.Theme.DeviationRGB(theme.WorstMs), fmt.Sprintf("%.0fms+", theme.WorstMs)),
	}
	return widgets.RenderStrip(colors, stripWidth, m.Theme.Muted()) + "   " + strings.Join(legend, "  ")
}

func (m Model) deviceNames() []string {
	names := make([]string, 0, len(m.devices))
	for id := range m.devices {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}
