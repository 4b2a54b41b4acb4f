package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nightwavefm/nightwave/internal/config"
	"github.com/nightwavefm/nightwave/internal/events"
	"github.com/nightwavefm/nightwave/internal/player"
)

// busMsg wraps a bus event for the tea loop.
type busMsg events.Event

// reloadMsg signals that the config file changed on disk.
type reloadMsg struct{}

// noticeExpireMsg clears a stale notice line.
type noticeExpireMsg time.Time

// noticeLifetime is how long a playback notice stays on screen.
const noticeLifetime = 6 * time.Second

// Model is the station's terminal front end. All playback state lives in the
// controller; the model only mirrors what arrives over the bus.
type Model struct {
	controller *player.Controller
	sub        *events.Subscriber
	cfg        *config.Safe

	width  int
	height int

	stationName string
	aboutText   string
	accent      string

	trackTitle string
	glyph      string
	volume     float64
	backdrop   backdropView
	listeners  int
	notice     string
	noticeAt   time.Time
	showAbout  bool
}

type backdropView struct {
	name    string
	palette []string
}

// New creates the UI model mirroring the controller's initial state.
func New(ctrl *player.Controller, bus *events.Bus, cfg *config.Safe) Model {
	c := cfg.Get()
	bd := ctrl.Backdrop()
	return Model{
		controller:  ctrl,
		sub:         bus.Subscribe(),
		cfg:         cfg,
		stationName: c.Station.Name,
		aboutText:   c.Station.About,
		accent:      c.UI.Accent,
		trackTitle:  ctrl.CurrentTrack().Title,
		glyph:       ctrl.Glyph(),
		volume:      ctrl.Volume(),
		backdrop:    backdropView{name: bd.Name, palette: bd.Palette},
	}
}

// Init starts the bus and config-reload listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.waitForReload())
}

// waitForEvent blocks on the bus subscription and converts the next event
// into a message.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.sub.C:
			return busMsg(ev)
		case <-m.sub.Done():
			return nil
		}
	}
}

func (m Model) waitForReload() tea.Cmd {
	return func() tea.Msg {
		<-m.cfg.ReloadCh()
		return reloadMsg{}
	}
}

// Controller calls download and decode audio, so they run as commands off
// the update loop; resulting state lands back here via the bus.
func (m Model) togglePlayCmd() tea.Cmd {
	return func() tea.Msg {
		m.controller.TogglePlay(context.Background())
		return nil
	}
}

func (m Model) skipCmd(dir int) tea.Cmd {
	return func() tea.Msg {
		if dir < 0 {
			m.controller.PrevTrack(context.Background())
		} else {
			m.controller.NextTrack(context.Background())
		}
		return nil
	}
}

func expireNoticeCmd() tea.Cmd {
	return tea.Tick(noticeLifetime, func(t time.Time) tea.Msg {
		return noticeExpireMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			return m, m.togglePlayCmd()
		case "up":
			m.controller.NudgeVolume(+1)
			return m, nil
		case "down":
			m.controller.NudgeVolume(-1)
			return m, nil
		case "left":
			return m, m.skipCmd(-1)
		case "right":
			return m, m.skipCmd(+1)
		case "a":
			m.showAbout = !m.showAbout
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case busMsg:
		ev := events.Event(msg)
		switch ev.Kind {
		case events.TrackChanged:
			m.trackTitle = ev.Track.Title
		case events.PlaybackChanged:
			if ev.Playing {
				m.glyph = player.GlyphPause
			} else {
				m.glyph = player.GlyphPlay
			}
		case events.VolumeChanged:
			m.volume = ev.Volume
		case events.BackdropChanged:
			m.backdrop = backdropView{name: ev.Backdrop.Name, palette: ev.Backdrop.Palette}
		case events.AudienceChanged:
			m.listeners = ev.Count
		case events.Notice:
			m.notice = ev.Message
			m.noticeAt = time.Now()
			return m, tea.Batch(m.waitForEvent(), expireNoticeCmd())
		}
		return m, m.waitForEvent()

	case noticeExpireMsg:
		if time.Since(m.noticeAt) >= noticeLifetime {
			m.notice = ""
		}
		return m, nil

	case reloadMsg:
		c := m.cfg.Get()
		m.stationName = c.Station.Name
		m.aboutText = c.Station.About
		m.accent = c.UI.Accent
		return m, m.waitForReload()
	}

	return m, nil
}
