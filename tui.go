package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"retrowave/player"
	"retrowave/sfx"
)

// soundPlayer is the part of player.Controller the TUI drives.
type soundPlayer interface {
	Initialize() error
	EnsureReady(ctx context.Context) bool
	Play(ctx context.Context, name string) error
}

type unlockedMsg struct{ err error }

type playedMsg struct {
	name string
	err  error
	wave []float32
	dur  time.Duration
}

type tickMsg time.Time

const (
	tickEvery     = 60 * time.Millisecond
	unlockTimeout = 2 * time.Second
	scopeW        = 40
	scopeH        = 8
)

type tuiModel struct {
	sounds *sfx.Registry
	player soundPlayer

	items     []sfx.Info
	cursor    int
	filter    string
	filtering bool

	// unlocked flips on the first key press, which is the gesture that
	// opens the audio device.
	unlocked bool

	status    string
	statusErr bool

	scope   []float32
	dur     time.Duration
	elapsed time.Duration
	playing bool

	width, height int
}

// Scope palette: index 1 is the played part of the wave, 2 the rest.
var (
	scopeColors   = []string{"", "213", "60"}
	scopeStyles   [3]lipgloss.Style
	scopeBgStyles [3][3]lipgloss.Style

	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("54"))
	catStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

func init() {
	for i, c := range scopeColors {
		if c != "" {
			scopeStyles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
		}
	}
	for i, fg := range scopeColors {
		for j, bg := range scopeColors {
			if fg != "" && bg != "" {
				scopeBgStyles[i][j] = lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(bg))
			}
		}
	}
}

func newTUIModel(sounds *sfx.Registry, p soundPlayer) tuiModel {
	return tuiModel{
		sounds: sounds,
		player: p,
		items:  sounds.List(),
		status: "Press any key to enable audio",
	}
}

func (a *app) runTUI(ctx context.Context) error {
	p := tea.NewProgram(newTUIModel(a.sounds, a.ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func tuiTick() tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) unlockCmd() tea.Cmd {
	p := m.player
	return func() tea.Msg {
		if err := p.Initialize(); err != nil {
			return unlockedMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
		defer cancel()
		if !p.EnsureReady(ctx) {
			return unlockedMsg{err: player.ErrResumeFailed}
		}
		return unlockedMsg{}
	}
}

func (m tuiModel) playCmd(name string) tea.Cmd {
	p, sounds := m.player, m.sounds
	return func() tea.Msg {
		err := p.Play(context.Background(), name)
		msg := playedMsg{name: name, err: err}
		if err == nil {
			if def, ok := sounds.Get(name); ok {
				msg.wave = preview(def)
				msg.dur = samplesDuration(len(msg.wave))
			}
		}
		return msg
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		var cmds []tea.Cmd
		if !m.unlocked {
			m.unlocked = true
			m.status = "Audio enabled"
			cmds = append(cmds, m.unlockCmd())
		}
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case unlockedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Audio unavailable: %v", msg.err)
			m.statusErr = true
		}

	case playedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s did not play: %v", msg.name, msg.err)
			m.statusErr = true
			return m, nil
		}
		m.status = "▶ " + msg.name
		m.statusErr = false
		m.scope = envelope(msg.wave, scopeW)
		m.dur = msg.dur
		m.elapsed = 0
		wasPlaying := m.playing
		m.playing = msg.dur > 0
		if m.playing && !wasPlaying {
			return m, tuiTick()
		}

	case tickMsg:
		if !m.playing {
			return m, nil
		}
		m.elapsed += tickEvery
		if m.elapsed >= m.dur {
			m.playing = false
			return m, nil
		}
		return m, tuiTick()
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tuiModel, tea.Cmd) {
	if m.filtering {
		switch msg.Type {
		case tea.KeyEnter:
			m.filtering = false
		case tea.KeyEsc:
			m.filtering = false
			m.setFilter("")
		case tea.KeyBackspace:
			if r := []rune(m.filter); len(r) > 0 {
				m.setFilter(string(r[:len(r)-1]))
			}
		case tea.KeySpace:
			m.setFilter(m.filter + " ")
		case tea.KeyRunes:
			m.setFilter(m.filter + string(msg.Runes))
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(len(m.items)-1, 0)
	case "/":
		m.filtering = true
	case "esc":
		m.setFilter("")
	case "enter", " ":
		if len(m.items) > 0 {
			return m, m.playCmd(m.items[m.cursor].Name)
		}
	}
	return m, nil
}

func (m *tuiModel) setFilter(q string) {
	m.filter = q
	m.items = m.sounds.Filter(q)
	m.cursor = min(m.cursor, max(len(m.items)-1, 0))
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var left []string
	left = append(left, titleStyle.Render("retrowave"), "")
	progress := 0.0
	if m.dur > 0 {
		progress = float64(m.elapsed) / float64(m.dur)
		if !m.playing {
			progress = 1
		}
	}
	left = append(left, strings.Split(strings.TrimRight(renderScope(m.scope, progress), "\n"), "\n")...)
	left = append(left, "")
	if m.statusErr {
		left = append(left, errStyle.Render(m.status))
	} else if m.unlocked {
		left = append(left, okStyle.Render(m.status))
	} else {
		left = append(left, dimStyle.Render(m.status))
	}
	left = append(left, "",
		keyStyle.Render("↑/↓")+helpStyle.Render(" select  ")+keyStyle.Render("enter")+helpStyle.Render(" play"),
		keyStyle.Render("/")+helpStyle.Render(" filter  ")+keyStyle.Render("q")+helpStyle.Render(" quit"),
		helpStyle.Render("retrowave "+version),
	)

	listWidth := max(m.width-scopeW-2, 20)
	listPanel := lipgloss.NewStyle().
		Width(listWidth).
		Height(m.height).
		PaddingLeft(1).
		Render(m.renderList(m.height))

	scopePanel := lipgloss.NewStyle().
		Width(scopeW + 1).
		Height(m.height).
		Render(strings.Join(left, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, scopePanel, listPanel)
}

func (m tuiModel) renderList(height int) string {
	var b strings.Builder
	filterLine := "Filter: " + m.filter
	if m.filtering {
		filterLine += "█"
	}
	b.WriteString(dimStyle.Render(filterLine) + "\n\n")

	if len(m.items) == 0 {
		b.WriteString(dimStyle.Render("No sounds match"))
		return b.String()
	}

	// Keep the cursor on screen.
	rows := max(height-3, 1)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(m.items))

	for i := start; i < end; i++ {
		info := m.items[i]
		line := fmt.Sprintf("%s %-16s %s", info.Emoji, info.Name, catStyle.Render(info.Category))
		if i == m.cursor {
			line = cursorStyle.Render(fmt.Sprintf("%s %-16s %s", info.Emoji, info.Name, info.Category)) +
				" " + dimStyle.Render(info.Description)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// envelope reduces samples to n peak magnitudes in [0, 1].
func envelope(samples []float32, n int) []float32 {
	if len(samples) == 0 || n <= 0 {
		return nil
	}
	out := make([]float32, n)
	for i := range out {
		lo := i * len(samples) / n
		hi := max((i+1)*len(samples)/n, lo+1)
		hi = min(hi, len(samples))
		var p float32
		for _, s := range samples[lo:hi] {
			p = max(p, float32(math.Abs(float64(s))))
		}
		out[i] = min(p, 1)
	}
	return out
}

// renderScope draws env as a mirrored bar graph using half-block
// characters, two pixel rows per text row.
func renderScope(env []float32, progress float64) string {
	const pixH = scopeH * 2
	center := float64(pixH) / 2

	pixels := make([][]int, pixH)
	for i := range pixels {
		pixels[i] = make([]int, scopeW)
	}
	played := int(progress * scopeW)
	for x := 0; x < scopeW && x < len(env); x++ {
		h := float64(env[x]) * center
		if env[x] > 0 {
			h = max(h, 0.5)
		}
		color := 2
		if x < played {
			color = 1
		}
		for y := 0; y < pixH; y++ {
			if math.Abs(float64(y)+0.5-center) < h {
				pixels[y][x] = color
			}
		}
	}

	var result strings.Builder
	for cy := 0; cy < scopeH; cy++ {
		for cx := 0; cx < scopeW; cx++ {
			top := pixels[cy*2][cx]
			bot := pixels[cy*2+1][cx]
			switch {
			case top == 0 && bot == 0:
				result.WriteString(" ")
			case top == bot:
				result.WriteString(scopeStyles[top].Render("█"))
			case bot == 0:
				result.WriteString(scopeStyles[top].Render("▀"))
			case top == 0:
				result.WriteString(scopeStyles[bot].Render("▄"))
			default:
				result.WriteString(scopeBgStyles[top][bot].Render("▀"))
			}
		}
		result.WriteString("\n")
	}
	return result.String()
}
