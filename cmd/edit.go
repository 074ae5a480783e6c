package cmd

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/icco/gridseq/internal/audio"
	"github.com/icco/gridseq/internal/clock"
	"github.com/icco/gridseq/internal/config"
	"github.com/icco/gridseq/internal/midi"
	"github.com/icco/gridseq/internal/sequencer"
	"github.com/icco/gridseq/internal/tui"
)

var editFlags struct {
	columns  int
	rows     int
	bpm      int
	output   string
	midiPort string
	export   string
	volume   float64
	paused   bool
}

var editCmd = &cobra.Command{
	Use:     "edit",
	Aliases: []string{"manual"},
	Short:   "Open the grid editor",
	Long: `Open the interactive grid editor.

Notes are played through the built-in synthesizer by default. Use
--output midi --midi-port NAME to drive an external MIDI device instead.

Example:
  gridseq edit --bpm 90 --columns 16
`,
	RunE: runEdit,
}

func init() {
	f := editCmd.Flags()
	f.IntVar(&editFlags.columns, "columns", 0, "Number of columns (beats)")
	f.IntVar(&editFlags.rows, "rows", 0, "Number of rows (pitch slots)")
	f.IntVar(&editFlags.bpm, "bpm", 0, "Initial tempo, clamped to 1-2000")
	f.StringVarP(&editFlags.output, "output", "o", "", "Note output: synth, midi or none")
	f.StringVar(&editFlags.midiPort, "midi-port", "", "MIDI output port name for --output midi")
	f.StringVar(&editFlags.export, "export", "", "Path written by the export key")
	f.Float64Var(&editFlags.volume, "volume", 0, "Synthesizer volume, clamped to 0-1")
	f.BoolVar(&editFlags.paused, "paused", false, "Do not start playback on launch")
	rootCmd.AddCommand(editCmd)
}

func applyEditFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("columns") {
		cfg.Columns = editFlags.columns
	}
	if flags.Changed("rows") {
		cfg.Rows = editFlags.rows
	}
	if flags.Changed("bpm") {
		cfg.BPM = editFlags.bpm
	}
	if flags.Changed("output") {
		cfg.Output = config.Output(editFlags.output)
	}
	if flags.Changed("midi-port") {
		cfg.MIDIPort = editFlags.midiPort
	}
	if flags.Changed("export") {
		cfg.ExportPath = editFlags.export
	}
	if flags.Changed("volume") {
		cfg.Volume = editFlags.volume
	}
}

func runEdit(cmd *cobra.Command, args []string) error {
	log, logFile, err := newLogger(logPath, logLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyEditFlags(cmd, cfg)
	engine, err := cfg.Engine()
	if err != nil {
		return err
	}
	instruments, err := cfg.InstrumentSet()
	if err != nil {
		return err
	}

	player, closePlayer, err := openOutput(cfg, log)
	if err != nil {
		return err
	}
	defer closePlayer()

	m := tui.New(tui.Options{
		Engine:      engine,
		Player:      player,
		Instruments: instruments,
		ExportPath:  cfg.ExportPath,
		Autoplay:    !editFlags.paused,
		Log:         log,
		Clock:       clock.NewTicker(8),
	})
	log.Info("editor starting", "columns", engine.Columns, "rows", engine.Rows, "bpm", engine.BPM, "output", cfg.Output)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return m.Err()
}

func openOutput(cfg *config.Config, log *slog.Logger) (sequencer.NotePlayer, func(), error) {
	switch cfg.Output {
	case config.OutputSynth:
		synth, err := audio.NewSynth(log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize audio: %w", err)
		}
		synth.SetVolume(cfg.Volume)
		return synth, func() { _ = synth.Close() }, nil
	case config.OutputMIDI:
		player, err := midi.Open(cfg.MIDIPort, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("MIDI output connected", "port", player.Port())
		return player, func() {
			if err := player.Close(); err != nil {
				log.Warn("close MIDI output", "err", err)
			}
		}, nil
	default:
		return nil, func() {}, nil
	}
}
