package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	panelWidth   = 52
	backdropRows = 5
	volumeBarLen = 20
)

func (m Model) View() string {
	accent := lipgloss.Color(m.accent)
	highlight := lipgloss.NewStyle().Foreground(accent)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2).
		Width(panelWidth)

	var body strings.Builder

	title := lipgloss.NewStyle().Foreground(accent).Bold(true).Render(m.stationName)
	body.WriteString(title + "\n\n")

	body.WriteString(m.renderBackdrop() + "\n")
	body.WriteString(dim.Render(m.backdrop.name) + "\n\n")

	body.WriteString(fmt.Sprintf("%s  %s\n", highlight.Render(m.glyph), m.trackTitle))
	body.WriteString(m.renderVolume(highlight, dim) + "\n")
	body.WriteString(dim.Render(fmt.Sprintf("%d listening now", m.listeners)) + "\n")

	if m.notice != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
		body.WriteString("\n" + errStyle.Render(m.notice) + "\n")
	}

	var content string
	if m.showAbout {
		content = border.Render(title + "\n\n" + m.aboutText + "\n\n" + dim.Render("a to close"))
	} else {
		content = border.Render(strings.TrimRight(body.String(), "\n"))
	}

	help := strings.Join([]string{
		"space " + highlight.Render(m.glyph),
		"↑/↓ volume",
		"←/→ track",
		"a about",
		"q quit",
	}, dim.Render("  ·  "))

	full := lipgloss.JoinVertical(lipgloss.Center, content, "", help)

	if m.width == 0 || m.height == 0 {
		return full
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, full)
}

// renderBackdrop paints the current scene as horizontal palette bands, the
// terminal stand-in for the station's full-page background image.
func (m Model) renderBackdrop() string {
	if len(m.backdrop.palette) == 0 {
		return ""
	}
	width := panelWidth - 6
	rows := make([]string, 0, backdropRows)
	for i := 0; i < backdropRows; i++ {
		color := m.backdrop.palette[i*len(m.backdrop.palette)/backdropRows]
		band := lipgloss.NewStyle().
			Foreground(lipgloss.Color(color)).
			Render(strings.Repeat("░", width))
		rows = append(rows, band)
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderVolume(highlight, dim lipgloss.Style) string {
	filled := int(m.volume*volumeBarLen + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > volumeBarLen {
		filled = volumeBarLen
	}
	bar := highlight.Render(strings.Repeat("█", filled)) +
		dim.Render(strings.Repeat("─", volumeBarLen-filled))
	return fmt.Sprintf("vol %s %3.0f%%", bar, m.volume*100)
}
