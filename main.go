// ABOUTME: Entry point for resonate-play
// ABOUTME: Parses configuration, starts the TUI and runs one playback session
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/resonate-play/internal/config"
	"github.com/Resonate-Protocol/resonate-play/internal/ui"
	"github.com/Resonate-Protocol/resonate-play/internal/version"
	"github.com/Resonate-Protocol/resonate-play/pkg/player"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	useTUI := !cfg.NoTUI

	// Set up logging
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s %s", version.Product, version.Version)

	sess, err := player.NewSession(cfg.Session())
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Printf("Error closing session: %v", err)
		}
	}()

	// TUI setup
	var tuiProg *tea.Program
	var volumeCtrl *ui.VolumeControl

	if useTUI {
		volumeCtrl = ui.NewVolumeControl()
		tuiProg, err = ui.Run(volumeCtrl, cfg.Volume)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
			sess.Stop()
		}()
	}

	// Helper to update TUI
	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	input := filepath.Base(cfg.File)
	if cfg.Tone > 0 {
		input = fmt.Sprintf("440Hz tone (%s)", cfg.Tone)
	}
	format := sess.Format()
	updateTUI(ui.StatusMsg{
		File:       input,
		Backend:    cfg.Backend,
		SessionID:  sess.SessionID(),
		Codec:      format.Codec,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		BitDepth:   format.BitDepth,
		State:      "playing",
	})

	if volumeCtrl != nil {
		go handleVolumeControl(sess, volumeCtrl)
	}
	if tuiProg != nil {
		go statsUpdateLoop(sess, updateTUI)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			log.Printf("Shutdown signal received")
			sess.Stop()
		case <-sess.Done():
		}
	}()

	if err := sess.Run(context.Background()); err != nil {
		log.Printf("Playback error: %v", err)
	}

	if tuiProg != nil {
		updateTUI(ui.StatusMsg{State: "stopped"})
		tuiProg.Quit()
	}

	log.Printf("Player stopped")
}

// handleVolumeControl processes volume changes and quit from TUI
func handleVolumeControl(sess *player.Session, volumeCtrl *ui.VolumeControl) {
	for {
		select {
		case vol := <-volumeCtrl.Changes:
			sess.SetVolume(vol.Volume)
			sess.SetMuted(vol.Muted)
		case <-volumeCtrl.Quit:
			log.Printf("Received quit signal from TUI")
			sess.Stop()
			return
		case <-sess.Done():
			return
		}
	}
}

// statsUpdateLoop periodically updates TUI with playback statistics
func statsUpdateLoop(sess *player.Session, updateTUI func(ui.StatusMsg)) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	// Use a slower ticker for expensive runtime stats to avoid GC pauses
	runtimeStatsTicker := time.NewTicker(2 * time.Second)
	defer runtimeStatsTicker.Stop()

	for {
		select {
		case <-sess.Done():
			return

		case <-runtimeStatsTicker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			updateTUI(ui.StatusMsg{
				Goroutines: runtime.NumGoroutine(),
				MemAlloc:   m.Alloc,
				MemSys:     m.Sys,
			})

		case <-ticker.C:
			stats := sess.Stats()
			updateTUI(ui.StatusMsg{Stats: &ui.StatsUpdate{
				Queued:       stats.Queued,
				QueueBytes:   stats.QueueBytes,
				Packets:      stats.Demux.Packets,
				Discarded:    stats.Demux.Discarded,
				PushFailures: stats.Demux.PushFailures,
				Frames:       stats.Decode.Frames,
				DecodeErrors: stats.Decode.DecodeErrors,
				Underruns:    stats.Decode.Underruns,
				SilenceFills: stats.Feed.SilenceFills,
			}})
		}
	}
}
