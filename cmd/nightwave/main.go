package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/nightwavefm/nightwave/internal/audience"
	"github.com/nightwavefm/nightwave/internal/catalog"
	"github.com/nightwavefm/nightwave/internal/config"
	"github.com/nightwavefm/nightwave/internal/events"
	"github.com/nightwavefm/nightwave/internal/fetch"
	"github.com/nightwavefm/nightwave/internal/player"
	"github.com/nightwavefm/nightwave/internal/ui"
)

var (
	flagConfig  string
	flagVolume  float64
	flagNoAudio bool
	flagSeed    uint64
	flagLogFile string
)

func main() {
	root := &cobra.Command{
		Use:   "nightwave",
		Short: "Terminal lofi radio: looping tracks, shifting backdrops",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd)
		},
		SilenceUsage: true,
	}

	root.Flags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	root.Flags().Float64VarP(&flagVolume, "volume", "v", 0.5, "starting volume in [0,1]")
	root.Flags().BoolVar(&flagNoAudio, "no-audio", false, "run without an audio device")
	root.Flags().Uint64Var(&flagSeed, "seed", 0, "fix the shuffle seed (0 = random)")
	root.Flags().StringVar(&flagLogFile, "log", "", "write diagnostics to this file")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command) error {
	// The TUI owns the terminal; diagnostics go to a file or nowhere.
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	c := cfg.Get()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracks, backdrops, err := buildCatalogs(c)
	if err != nil {
		return err
	}

	seed := flagSeed
	if seed == 0 {
		seed = rand.Uint64()
	}

	var factory player.Factory = player.NewBeepFactory(fetch.NewClient(c.FetchTimeout()))
	if flagNoAudio {
		factory = player.SilentFactory{}
	}

	defaultVolume := c.Audio.DefaultVolume
	if cmd.Flags().Changed("volume") {
		defaultVolume = flagVolume
	}

	bus := events.NewBus()
	ctrl := player.NewController(player.Options{
		Tracks:        tracks,
		Backdrops:     backdrops,
		Bus:           bus,
		Factory:       factory,
		RNG:           rand.New(rand.NewPCG(seed, 1)),
		DefaultVolume: defaultVolume,
		VolumeStep:    c.Audio.VolumeStep,
	})
	defer ctrl.Close()

	// The listener count is pure theater; it gets its own RNG stream so the
	// shuffle stays reproducible under --seed.
	sim := audience.NewSimulator(bus, rand.New(rand.NewPCG(seed, 2)), c.AudienceTick(), c.Audience.Ceiling)
	go sim.Run(ctx)

	log.Printf("%s starting (seed %d, %d tracks, %d backdrops)",
		c.Station.Name, seed, tracks.Len(), backdrops.Len())

	program := tea.NewProgram(ui.New(ctrl, bus, cfg), tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

// buildCatalogs turns config overrides into catalogs, falling back to the
// built-in station defaults.
func buildCatalogs(c config.Config) (*catalog.Tracks, *catalog.Backdrops, error) {
	trackEntries := catalog.DefaultTracks
	if len(c.Tracks) > 0 {
		trackEntries = lo.Map(c.Tracks, func(t config.TrackEntry, _ int) catalog.Track {
			return catalog.Track{Title: t.Title, URL: t.URL}
		})
	}
	tracks, err := catalog.NewTracks(trackEntries)
	if err != nil {
		return nil, nil, fmt.Errorf("track catalog: %w", err)
	}

	backdropEntries := catalog.DefaultBackdrops
	if len(c.Backdrops) > 0 {
		backdropEntries = lo.Map(c.Backdrops, func(b config.BackdropEntry, _ int) catalog.Backdrop {
			return catalog.Backdrop{Name: b.Name, Palette: b.Palette}
		})
	}
	backdrops, err := catalog.NewBackdrops(backdropEntries)
	if err != nil {
		return nil, nil, fmt.Errorf("backdrop catalog: %w", err)
	}

	return tracks, backdrops, nil
}
