package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// how long a flash message stays on screen
const flashDuration = 2 * time.Second

type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashInfo    FlashLevel = "info"
	FlashWarning FlashLevel = "warning"
	FlashError   FlashLevel = "error"
)

// Flash is a transient status line
type Flash struct {
	id    int
	text  string
	level FlashLevel
}

// sent when a flash message times out
type flashExpiredMsg struct {
	id int
}

// shows text and schedules its dismissal. a newer flash is not cleared by
// an older one's timer.
func (m *Model) showFlash(text string, level FlashLevel) tea.Cmd {
	m.flashID++
	m.flash = &Flash{id: m.flashID, text: text, level: level}

	id := m.flashID
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{id: id}
	})
}

func (m *Model) expireFlash(msg flashExpiredMsg) {
	if m.flash != nil && m.flash.id == msg.id {
		m.flash = nil
	}
}

func (f *Flash) View() string {
	if f == nil {
		return ""
	}

	style, ok := flashStyles[f.level]
	if !ok {
		style = flashStyles[FlashInfo]
	}

	return style.Render(f.text)
}
