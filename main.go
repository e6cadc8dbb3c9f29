package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli"

	"go-rhythm/audio"
	"go-rhythm/config"
	"go-rhythm/debug"
	"go-rhythm/midiout"
	"go-rhythm/rhythm"
	"go-rhythm/theme"
	"go-rhythm/tui"
)

// renderer is what a sound backend must provide: scheduling, the audio
// clock, and teardown.
type renderer interface {
	rhythm.Renderer
	rhythm.Clock
	Close()
}

func main() {
	app := cli.NewApp()
	app.Name = "go-rhythm"
	app.Usage = "terminal rhythm trainer"
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "midi", Usage: "send clicks to a MIDI output instead of the speaker"},
		cli.StringFlag{Name: "port", Usage: "MIDI output port name (default: first available)"},
		cli.StringFlag{Name: "palette", Usage: "GPL palette file for the UI"},
		cli.BoolFlag{Name: "debug", Usage: "write a debug log to ~/.config/go-rhythm/debug.log"},
	}
	app.Action = runTrainer
	app.Commands = []cli.Command{
		{
			Name:   "ports",
			Usage:  "list MIDI output ports",
			Action: listPorts,
		},
		{
			Name:  "play",
			Usage: "play a pattern without the UI",
			Flags: []cli.Flag{
				cli.Float64Flag{Name: "bpm", Value: 120},
				cli.StringFlag{Name: "pattern", Value: "basic"},
				cli.IntFlag{Name: "bars", Value: 4},
				cli.BoolFlag{Name: "midi"},
				cli.StringFlag{Name: "port"},
			},
			Action: playHeadless,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openRenderer picks and opens a sound backend.
func openRenderer(useMIDI bool, port string) (renderer, string, error) {
	if useMIDI {
		r, err := midiout.Open(port)
		if err != nil {
			return nil, "", err
		}
		return r, "midi:" + r.PortName(), nil
	}
	r, err := audio.NewRenderer()
	if err != nil {
		return nil, "", err
	}
	return r, "speaker", nil
}

func runTrainer(c *cli.Context) error {
	if c.Bool("debug") {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log unavailable: %v\n", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	useMIDI := cfg.Output.Backend == config.BackendMIDI || c.Bool("midi")
	port := cfg.Output.PortName
	if c.IsSet("port") {
		port = c.String("port")
	}

	r, label, err := openRenderer(useMIDI, port)
	if err != nil {
		return err
	}
	defer r.Close()

	tr := rhythm.NewTransport(r, r)
	applyConfig(tr, cfg)

	palette := theme.Default()
	if path := c.String("palette"); path != "" {
		palette, err = theme.LoadGPL(path)
		if err != nil {
			return fmt.Errorf("loading palette: %w", err)
		}
	}

	m := tui.NewModel(tr, cfg, theme.New(palette), label)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// applyConfig pushes saved preferences through the validated setters.
// A stale or hand-edited value is dropped, not substituted silently.
func applyConfig(tr *rhythm.Transport, cfg *config.Config) {
	tr.SetTempo(cfg.Tempo)
	sig := rhythm.TimeSignature{Numerator: cfg.Signature.Numerator, Denominator: cfg.Signature.Denominator}
	if err := tr.SetTimeSignature(sig); err != nil {
		debug.Log("main", "saved signature rejected: %v", err)
	}
	if err := tr.SetPattern(cfg.Pattern); err != nil {
		debug.Log("main", "saved pattern rejected: %v", err)
	}
}

func listPorts(c *cli.Context) error {
	ports := midiout.Ports()
	if len(ports) == 0 {
		fmt.Println("No MIDI output ports found")
		return nil
	}
	for i, p := range ports {
		fmt.Printf("  %d: %s\n", i, p)
	}
	return nil
}

func playHeadless(c *cli.Context) error {
	r, label, err := openRenderer(c.Bool("midi"), c.String("port"))
	if err != nil {
		return err
	}
	defer r.Close()

	tr := rhythm.NewTransport(r, r)
	tr.SetTempo(c.Float64("bpm"))
	if err := tr.SetPattern(c.String("pattern")); err != nil {
		return err
	}

	key, pat := tr.Pattern()
	fmt.Printf("playing %s (%s) at %.0f bpm on %s\n", pat.Name, key, tr.Tempo(), label)

	if err := tr.Start(); err != nil {
		return err
	}
	bars := c.Int("bars")
	if bars < 1 {
		bars = 1
	}
	barSeconds := float64(tr.TimeSignature().Numerator) * 60 / tr.Tempo()
	time.Sleep(time.Duration(float64(bars)*barSeconds*float64(time.Second)) + time.Second/2)
	tr.Stop()
	return nil
}
