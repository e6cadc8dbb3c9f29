package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-rhythm/config"
	"go-rhythm/debug"
	"go-rhythm/rhythm"
	"go-rhythm/theme"
)

// Playhead refresh rate
const fps = 30

type Model struct {
	Transport *rhythm.Transport
	Config    *config.Config
	Theme     *theme.Theme
	Output    string // renderer description for the header

	patterns []string // catalog keys, selection cycles through these
	selected int
	status   string // last rejected change, shown until the next key
	quitting bool
}

type tickMsg struct{}

func NewModel(tr *rhythm.Transport, cfg *config.Config, th *theme.Theme, output string) Model {
	keys := rhythm.Keys()
	selected := 0
	for i, k := range keys {
		if k == cfg.Pattern {
			selected = i
			break
		}
	}
	return Model{
		Transport: tr,
		Config:    cfg,
		Theme:     th,
		Output:    output,
		patterns:  keys,
		selected:  selected,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Transport.Stop()
			return m, tea.Quit

		case "p", " ":
			if m.Transport.Playing() {
				m.Transport.Stop()
			} else if err := m.Transport.Start(); err != nil {
				m.status = err.Error()
			}

		case "+", "=":
			m.setTempo(m.Transport.Tempo() + 5)

		case "-", "_":
			m.setTempo(m.Transport.Tempo() - 5)

		case "right", "l":
			m.selectPattern((m.selected + 1) % len(m.patterns))

		case "left", "h":
			m.selectPattern((m.selected + len(m.patterns) - 1) % len(m.patterns))

		case "up", "k":
			sig := m.Transport.TimeSignature()
			sig.Numerator++
			m.setSignature(sig)

		case "down", "j":
			sig := m.Transport.TimeSignature()
			sig.Numerator--
			m.setSignature(sig)

		case "]":
			sig := m.Transport.TimeSignature()
			if sig.Denominator < 16 {
				sig.Denominator *= 2
			}
			m.setSignature(sig)

		case "[":
			sig := m.Transport.TimeSignature()
			if sig.Denominator > 1 {
				sig.Denominator /= 2
			}
			m.setSignature(sig)
		}
		return m, nil

	case tickMsg:
		return m, tick()
	}

	return m, nil
}

// Setters: apply to the transport first, persist only what it accepted.

func (m *Model) setTempo(bpm float64) {
	m.Transport.SetTempo(bpm) // clamped, never fails
	m.Config.Tempo = m.Transport.Tempo()
	m.saveConfig()
}

func (m *Model) setSignature(sig rhythm.TimeSignature) {
	if err := m.Transport.SetTimeSignature(sig); err != nil {
		m.status = err.Error()
		return
	}
	m.Config.Signature = config.SignatureConfig{Numerator: sig.Numerator, Denominator: sig.Denominator}
	m.saveConfig()
}

func (m *Model) selectPattern(idx int) {
	key := m.patterns[idx]
	if err := m.Transport.SetPattern(key); err != nil {
		m.status = err.Error()
		return
	}
	m.selected = idx
	m.Config.Pattern = key
	m.saveConfig()
}

func (m *Model) saveConfig() {
	if err := m.Config.Save(); err != nil {
		debug.Log("tui", "config save failed: %v", err)
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	playState := "STOP"
	if m.Transport.Playing() {
		playState = "PLAY"
	}
	key, pat := m.Transport.Pattern()
	header := headerStyle.Render(fmt.Sprintf("go-rhythm  %s  %3.0fbpm  %s  %s  out:%s",
		playState, m.Transport.Tempo(), m.Transport.TimeSignature(), pat.Name, m.Output))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.patternView(pat))
	out.WriteString("\n")
	out.WriteString(m.catalogView(key))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render("space:play/stop  +/-:tempo  h/l:pattern  j/k:beats  [/]:note value  q:quit"))

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(m.status))
	}

	return out.String()
}

// patternView draws a playhead row above one row per voice.
func (m Model) patternView(pat rhythm.Pattern) string {
	sym := m.Theme.Symbols
	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor())
	accentStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	normalStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	restStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	mod := pat.Modulus()
	cur := -1
	if m.Transport.Playing() {
		cur = m.Transport.CurrentStep()
	}

	var cursor strings.Builder
	cursor.WriteString("      ")
	for i := 0; i < mod; i++ {
		if i == cur {
			cursor.WriteString(cursorStyle.Render(string(sym.StepPlayhead)))
		} else {
			cursor.WriteString(" ")
		}
		cursor.WriteString(" ")
	}

	var rows []string
	rows = append(rows, cursor.String())

	if pat.Kind == rhythm.PatternGrid {
		var row strings.Builder
		row.WriteString("      ")
		for i := 0; i < pat.Slots; i++ {
			if pat.Accents[i] {
				row.WriteString(accentStyle.Render(string(sym.StepAccent)))
			} else {
				row.WriteString(normalStyle.Render(string(sym.StepNormal)))
			}
			row.WriteString(" ")
		}
		rows = append(rows, row.String())
	} else {
		for _, voice := range []struct {
			label string
			count int
			style lipgloss.Style
		}{
			{fmt.Sprintf("A %2d  ", pat.GridA.Count), pat.GridA.Count, accentStyle},
			{fmt.Sprintf("B %2d  ", pat.GridB.Count), pat.GridB.Count, normalStyle},
		} {
			var row strings.Builder
			row.WriteString(voice.label)
			for i := 0; i < mod; i++ {
				if rhythm.IsGridTick(i, mod, voice.count) {
					row.WriteString(voice.style.Render(string(sym.TickHit)))
				} else {
					row.WriteString(restStyle.Render(string(sym.TickRest)))
				}
				row.WriteString(" ")
			}
			rows = append(rows, row.String())
		}
	}

	return strings.Join(rows, "\n") + "\n"
}

// catalogView lists the patterns with the active one highlighted.
func (m Model) catalogView(active string) string {
	sel := lipgloss.NewStyle().Foreground(m.Theme.Cursor())
	dim := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	var parts []string
	for _, k := range m.patterns {
		p, err := rhythm.Lookup(k)
		if err != nil {
			continue
		}
		if k == active {
			parts = append(parts, sel.Render("["+p.Name+"]"))
		} else {
			parts = append(parts, dim.Render(p.Name))
		}
	}
	return strings.Join(parts, "  ") + "\n"
}
