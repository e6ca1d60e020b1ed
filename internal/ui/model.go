// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Defines application state and update logic
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Input
	file      string
	backend   string
	sessionID string

	// Stream
	codec      string
	sampleRate int
	channels   int
	bitDepth   int

	// Playback
	state  string
	volume int
	muted  bool

	// Stats
	queued       int
	queueBytes   int
	packets      int64
	discarded    int64
	pushFailures int64
	frames       int64
	decodeErrors int64
	underruns    int64
	silenceFills int64

	// Debug
	showDebug  bool
	goroutines int
	memAlloc   uint64
	memSys     uint64

	// Dimensions
	width  int
	height int

	volumeCtrl *VolumeControl
}

// StatusMsg updates TUI state
type StatusMsg struct {
	File       string
	Backend    string
	SessionID  string
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
	State      string
	Volume     int

	// Stats is nil when the message carries no counters
	Stats *StatsUpdate

	Goroutines int
	MemAlloc   uint64
	MemSys     uint64
}

// StatsUpdate carries pipeline counters
type StatsUpdate struct {
	Queued       int
	QueueBytes   int
	Packets      int64
	Discarded    int64
	PushFailures int64
	Frames       int64
	DecodeErrors int64
	Underruns    int64
	SilenceFills int64
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderStreamInfo())
	b.WriteString(m.renderControls())
	b.WriteString(m.renderStats())

	if m.showDebug {
		b.WriteString(m.renderDebug())
	}

	b.WriteString(m.renderHelp())

	return b.String()
}

// renderHeader renders input and playback state
func (m Model) renderHeader() string {
	return fmt.Sprintf(`┌─ Resonate Play ──────────────────────────────────────┐
│ File:   %-44s │
│ State:  %-44s │
├──────────────────────────────────────────────────────┤
`, truncate(m.file, 44), m.state)
}

// renderStreamInfo renders the stream format
func (m Model) renderStreamInfo() string {
	if m.codec == "" {
		return "│ No stream                                            │\n"
	}

	format := fmt.Sprintf("%s %dHz %s %d-bit", m.codec, m.sampleRate, channelName(m.channels), m.bitDepth)
	return fmt.Sprintf("│ Format: %-44s │\n│ Output: %-44s │\n", truncate(format, 44), m.backend)
}

// renderControls renders volume and queue status
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " 🔇"
	}

	volumeBar := renderBar(m.volume, 100, 10)

	return fmt.Sprintf("│                                                      │\n"+
		"│ Volume: [%s] %d%%%s%-17s │\n"+
		"│ Queue:  %d packets (%d KB)%-20s │\n",
		volumeBar, m.volume, muteIcon, "",
		m.queued, m.queueBytes/1024, "")
}

// renderStats renders playback statistics
func (m Model) renderStats() string {
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Demux:  %d packets  %d discarded  %d dropped%-4s │
│ Decode: %d frames  %d errors  %d underruns%-6s │
│ Output: %d silence fills%-29s │
`, m.packets, m.discarded, m.pushFailures, "",
		m.frames, m.decodeErrors, m.underruns, "",
		m.silenceFills, "")
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ ↑/↓:Volume  m:Mute  d:Debug  q:Quit                  │
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Session:    %-38s │
│   Goroutines: %-38d │
│   Memory:     %d KB alloc / %d KB sys%-12s │
`, m.sessionID, m.goroutines, m.memAlloc/1024, m.memSys/1024, "")
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.volumeCtrl.sendQuit()
		return m, tea.Quit
	case "up":
		if m.volume < 100 {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
			m.volumeCtrl.sendChange(VolumeChangeMsg{Volume: m.volume, Muted: m.muted})
		}
	case "down":
		if m.volume > 0 {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
			m.volumeCtrl.sendChange(VolumeChangeMsg{Volume: m.volume, Muted: m.muted})
		}
	case "m":
		m.muted = !m.muted
		m.volumeCtrl.sendChange(VolumeChangeMsg{Volume: m.volume, Muted: m.muted})
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.File != "" {
		m.file = msg.File
	}
	if msg.Backend != "" {
		m.backend = msg.Backend
	}
	if msg.SessionID != "" {
		m.sessionID = msg.SessionID
	}
	if msg.Codec != "" {
		m.codec = msg.Codec
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
		m.bitDepth = msg.BitDepth
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Volume != 0 {
		m.volume = msg.Volume
	}
	if s := msg.Stats; s != nil {
		m.queued = s.Queued
		m.queueBytes = s.QueueBytes
		m.packets = s.Packets
		m.discarded = s.Discarded
		m.pushFailures = s.PushFailures
		m.frames = s.Frames
		m.decodeErrors = s.DecodeErrors
		m.underruns = s.Underruns
		m.silenceFills = s.SilenceFills
	}
	if msg.Goroutines != 0 {
		m.goroutines = msg.Goroutines
		m.memAlloc = msg.MemAlloc
		m.memSys = msg.MemSys
	}
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}
