package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-synthy/config"
	"go-synthy/keys"
	"go-synthy/midi"
	"go-synthy/song"
	"go-synthy/theme"
	"go-synthy/widgets"
)

// FrameInterval drives redraws at 60 fps
const FrameInterval = time.Second / 60

// LookaheadStep is how far +/- move the window
const LookaheadStep = 250 * time.Millisecond

type Model struct {
	Song      *song.Song
	Keys      *midi.KeyState
	DeviceMgr *midi.DeviceManager // may be nil
	Lookahead *config.Lookahead
	Theme     *theme.Theme
	layout    *keys.Layout
	overlay   bool
	quitting  bool
	width     int
	height    int
	now       time.Time
	devices   []string
}

type TickMsg time.Time

type DeviceEventMsg midi.DeviceEvent

func NewModel(s *song.Song, state *midi.KeyState, deviceMgr *midi.DeviceManager, lookahead *config.Lookahead, th *theme.Theme, showOverlay bool) Model {
	return Model{
		Song:      s,
		Keys:      state,
		DeviceMgr: deviceMgr,
		Lookahead: lookahead,
		Theme:     th,
		layout:    keys.NewLayout(keys.DefaultBlackWidth),
		overlay:   showOverlay,
		width:     80,
		height:    24,
		now:       s.Epoch(),
	}
}

func Tick() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	if m.DeviceMgr == nil {
		return Tick()
	}
	return tea.Batch(Tick(), ListenForDevices(m.DeviceMgr))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "+", "=":
			m.Lookahead.Adjust(LookaheadStep, config.MinLookahead)

		case "-", "_":
			m.Lookahead.Adjust(-LookaheadStep, config.MinLookahead)

		case "r":
			m.now = time.Now()
			m.Song.Restart(m.now)

		case "esc":
			m.overlay = !m.overlay
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case TickMsg:
		m.now = time.Time(msg)
		m.Song.Update(m.now)
		return m, Tick()

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.devices = append(m.devices, event.ID)
		case midi.DeviceDisconnected:
			kept := m.devices[:0:0]
			for _, id := range m.devices {
				if id != event.ID {
					kept = append(kept, id)
				}
			}
			m.devices = kept
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var header []string
	if m.overlay {
		header = m.overlayLines()
	}

	// Roll, hit line, keyboard
	rollH := m.height - len(header) - 2
	if rollH < 1 {
		rollH = 1
	}

	var out strings.Builder
	for _, line := range header {
		out.WriteString(line)
		out.WriteString("\n")
	}
	out.WriteString(m.renderRoll(rollH))
	out.WriteString(lipgloss.NewStyle().Foreground(m.Theme.Muted()).
		Render(strings.Repeat(string(m.Theme.Symbols.HitLine), m.width)))
	out.WriteString("\n")
	out.WriteString(m.renderKeyboard())
	return out.String()
}

func (m Model) overlayLines() []string {
	muted, accent := m.Theme.Muted(), m.Theme.Accent()
	sep := lipgloss.NewStyle().Foreground(muted).Render(" " + string(m.Theme.Symbols.Separator) + " ")

	devices := "none"
	if len(m.devices) > 0 {
		devices = strings.Join(m.devices, ", ")
	}

	stats := strings.Join([]string{
		widgets.RenderStat("lookahead", m.Song.Lookahead(), muted, accent),
		widgets.RenderStat("tiles", len(m.Song.Score()), muted, accent),
		widgets.RenderStat("active", len(m.Song.Active()), muted, accent),
		widgets.RenderStat("pending", m.Song.Pending(), muted, accent),
		widgets.RenderStat("time", m.Song.Elapsed(m.now).Truncate(100*time.Millisecond), muted, accent),
	}, sep)

	help := widgets.RenderKeyHelp([]widgets.KeySection{{
		Keys: []widgets.KeyBinding{
			{Key: "+/-", Desc: fmt.Sprintf("lookahead ±%v", LookaheadStep)},
			{Key: "r", Desc: "restart"},
			{Key: "esc", Desc: "hide this"},
			{Key: "q", Desc: "quit"},
		},
	}})

	// Key indices 39 and 40 are C4 and C#4
	lines := []string{
		stats,
		widgets.RenderStat("input", devices, muted, accent),
		widgets.RenderLegendItem(m.Theme.Tile(39), "white", "tile on a white key"),
		widgets.RenderLegendItem(m.Theme.Tile(40), "black", "tile on a black key"),
		widgets.RenderLegendItem(m.Theme.Held(), "held", "key down on your keyboard"),
	}
	for _, l := range strings.Split(help, "\n") {
		lines = append(lines, lipgloss.NewStyle().Foreground(muted).Render(l))
	}
	return lines
}

func (m Model) renderRoll(rollH int) string {
	placements := m.Song.Placements(m.now, float64(rollH))
	grid := Rasterize(placements, m.layout, m.width, rollH)

	var out strings.Builder
	for _, row := range grid {
		out.WriteString(m.renderRow(row, func(note int) (lipgloss.Color, rune) {
			return m.Theme.Tile(note), m.Theme.Symbols.Tile
		}))
		out.WriteString("\n")
	}
	return out.String()
}

func (m Model) renderKeyboard() string {
	held := m.Keys.Snapshot()

	var sounding [keys.Count]bool
	for _, p := range m.Song.Placements(m.now, 1) {
		if p.TimeToDie > 0 && p.TimeToDie <= p.Tile.Length {
			sounding[p.Tile.Note] = true
		}
	}

	sym := m.Theme.Symbols
	return m.renderRow(KeyColumns(m.layout, m.width), func(idx int) (lipgloss.Color, rune) {
		switch {
		case held[idx]:
			return m.Theme.Held(), sym.HeldKey
		case sounding[idx]:
			return m.Theme.Tile(idx), sym.Sounding
		case keys.TypeOf(idx) == keys.Black:
			return m.Theme.Muted(), sym.BlackKey
		}
		return m.Theme.FG(), sym.WhiteKey
	})
}

// renderRow styles runs of equal cells together; -1 cells are blank
func (m Model) renderRow(cells []int, look func(int) (lipgloss.Color, rune)) string {
	var out strings.Builder
	for i := 0; i < len(cells); {
		j := i
		for j < len(cells) && cells[j] == cells[i] {
			j++
		}
		if cells[i] < 0 {
			out.WriteString(strings.Repeat(" ", j-i))
		} else {
			color, r := look(cells[i])
			out.WriteString(lipgloss.NewStyle().Foreground(color).Render(strings.Repeat(string(r), j-i)))
		}
		i = j
	}
	return out.String()
}

// Rasterize maps placements onto a width×height character grid. Each cell
// holds the key index of the tile covering it, or -1.
func Rasterize(placements []song.Placement, layout *keys.Layout, width, height int) [][]int {
	grid := make([][]int, height)
	for r := range grid {
		grid[r] = make([]int, width)
		for c := range grid[r] {
			grid[r][c] = -1
		}
	}

	for _, p := range placements {
		x, w := layout.Span(p.Tile.Note, float64(width))
		c0, c1 := int(x), int(x+w)
		if c1 <= c0 {
			c1 = c0 + 1
		}
		top, bottom := p.Y, p.Y+p.Height
		for r := max(0, int(top)); r < height && float64(r) < bottom; r++ {
			for c := max(0, c0); c < min(width, c1); c++ {
				grid[r][c] = p.Tile.Note
			}
		}
	}
	return grid
}

// KeyColumns assigns every terminal column to the key under its centre.
// Black keys sit on top of white ones.
func KeyColumns(layout *keys.Layout, width int) []int {
	cols := make([]int, width)
	for c := range cols {
		cols[c] = -1
	}
	for _, pass := range []keys.KeyType{keys.White, keys.Black} {
		for idx := 0; idx < keys.Count; idx++ {
			if layout.Keys[idx].Type != pass {
				continue
			}
			x, w := layout.Span(idx, float64(width))
			for c := max(0, int(x)); c < width && float64(c) < x+w; c++ {
				if centre := float64(c) + 0.5; centre >= x && centre < x+w {
					cols[c] = idx
				}
			}
		}
	}
	return cols
}
