// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// VolumeChangeMsg carries a volume or mute change from the TUI
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// QuitMsg is sent when the user asks to quit
type QuitMsg struct{}

// VolumeControl holds channels for volume control communication
type VolumeControl struct {
	Changes chan VolumeChangeMsg
	Quit    chan QuitMsg
}

// NewVolumeControl creates a new volume control handler
func NewVolumeControl() *VolumeControl {
	return &VolumeControl{
		Changes: make(chan VolumeChangeMsg, 10),
		Quit:    make(chan QuitMsg, 1),
	}
}

// sendChange drops the change if the consumer is behind
func (v *VolumeControl) sendChange(msg VolumeChangeMsg) {
	if v == nil {
		return
	}
	select {
	case v.Changes <- msg:
	default:
	}
}

func (v *VolumeControl) sendQuit() {
	if v == nil {
		return
	}
	select {
	case v.Quit <- QuitMsg{}:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(volCtrl *VolumeControl, volume int) Model {
	return Model{
		volume:     volume,
		state:      "starting",
		volumeCtrl: volCtrl,
	}
}

// Run creates the TUI program
func Run(volCtrl *VolumeControl, volume int) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(volCtrl, volume), tea.WithAltScreen())
	return p, nil
}
