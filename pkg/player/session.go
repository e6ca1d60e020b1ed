// ABOUTME: Playback session
// ABOUTME: Resolves source and decoder, then runs demux and output until shutdown
package player

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
	"github.com/Resonate-Protocol/resonate-play/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-play/pkg/audio/feed"
	"github.com/Resonate-Protocol/resonate-play/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-play/pkg/audio/queue"
	"github.com/Resonate-Protocol/resonate-play/pkg/demux"
	"github.com/Resonate-Protocol/resonate-play/pkg/ffmpeg"
	"github.com/Resonate-Protocol/resonate-play/pkg/lifecycle"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultToneSampleRate = 48000
	DefaultToneChannels   = 2
)

// Config holds session configuration
type Config struct {
	File         string
	Backend      string // oto, malgo, portaudio
	BufferFrames int
	Demuxer      string // auto, ffmpeg, native
	Decoder      string // ffmpeg, native
	MaxPackets   int
	MaxWait      time.Duration
	Drain        bool
	Linger       time.Duration
	Tone         time.Duration
	Volume       int

	// Source and Output override the resolved source and backend
	Source demux.Source
	Output output.Output
}

// Stats merges the counters of every pipeline stage
type Stats struct {
	Queued     int
	QueueBytes int
	Queue      queue.Stats
	Demux      demux.DriverStats
	Decode     decode.EngineStats
	Feed       feed.Stats
}

// Session is one playback of one input
type Session struct {
	id       string
	cfg      Config
	shutdown *lifecycle.Shutdown
	src      demux.Source
	queue    *queue.Queue
	engine   *decode.Engine
	feeder   *feed.Feeder
	out      output.Output
	driver   *demux.Driver

	closeOnce sync.Once
	closeErr  error
}

// NewSession builds the pipeline for cfg
func NewSession(cfg Config) (*Session, error) {
	src, err := openSource(cfg)
	if err != nil {
		return nil, err
	}

	prim, err := newPrimitive(cfg, src)
	if err != nil {
		src.Close()
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out, err = output.New(cfg.Backend, cfg.BufferFrames)
		if err != nil {
			src.Close()
			return nil, err
		}
	}
	out.SetVolume(cfg.Volume)

	linger := cfg.Linger
	if linger == 0 {
		linger = demux.DefaultLinger
	}

	sd := lifecycle.New()
	q := queue.New(sd, queue.WithMaxPackets(cfg.MaxPackets))
	engine := decode.NewEngine(q, prim, decode.WithMaxWait(cfg.MaxWait))

	s := &Session{
		id:       uuid.NewString(),
		cfg:      cfg,
		shutdown: sd,
		src:      src,
		queue:    q,
		engine:   engine,
		feeder:   feed.New(engine),
		out:      out,
		driver:   demux.NewDriver(src, q, sd, demux.WithDrain(cfg.Drain), demux.WithLinger(linger)),
	}

	s.logf("Session created: %s", src.Format())
	return s, nil
}

// openSource picks the packet source for cfg
func openSource(cfg Config) (demux.Source, error) {
	if cfg.Source != nil {
		return cfg.Source, nil
	}
	if cfg.Tone > 0 {
		return demux.NewToneSource(DefaultToneSampleRate, DefaultToneChannels, cfg.Tone), nil
	}
	if cfg.File == "" {
		return nil, errors.New("no input file")
	}

	if cfg.Demuxer != "ffmpeg" {
		switch ext := strings.ToLower(filepath.Ext(cfg.File)); ext {
		case ".mp3":
			src, err := demux.NewMP3Source(cfg.File)
			if err != nil {
				return nil, err
			}
			return src, nil
		case ".flac":
			src, err := demux.NewFLACSource(cfg.File)
			if err != nil {
				return nil, err
			}
			return src, nil
		default:
			if cfg.Demuxer == "native" {
				return nil, fmt.Errorf("unsupported audio format for native demuxer: %s (supported: .mp3, .flac)", ext)
			}
		}
	}

	src, err := ffmpeg.Open(cfg.File)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// newPrimitive picks the decode primitive for src
func newPrimitive(cfg Config, src demux.Source) (decode.Primitive, error) {
	format := src.Format()

	fs, ok := src.(*ffmpeg.Source)
	if !ok {
		return nativePrimitive(format)
	}

	if cfg.Decoder == "native" {
		prim, err := nativePrimitive(format)
		if err == nil {
			return prim, nil
		}
		log.Printf("Native decoder unavailable, using FFmpeg: %v", err)
	}

	dec, err := fs.NewDecoder()
	if err != nil {
		return nil, err
	}
	return dec, nil
}

func nativePrimitive(format audio.Format) (decode.Primitive, error) {
	switch {
	case format.Codec == "opus":
		return decode.NewOpus(format)
	case strings.HasPrefix(format.Codec, "pcm"):
		return decode.NewPCM(format)
	default:
		return nil, fmt.Errorf("no native decoder for codec: %s", format.Codec)
	}
}

// Run plays until end of input, Stop or context cancellation
func (s *Session) Run(ctx context.Context) error {
	if err := s.out.Open(s.src.Format(), s.feeder); err != nil {
		s.shutdown.Signal()
		return fmt.Errorf("failed to open output: %w", err)
	}
	s.logf("Playback started")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer s.shutdown.Signal()
		return s.driver.Run(gctx)
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
			s.shutdown.Signal()
		case <-s.shutdown.Done():
		}
		return nil
	})

	err := g.Wait()
	s.logf("Playback finished: %d packets, %d frames, %d silence fills",
		s.driver.Stats().Packets, s.engine.Stats().Frames, s.feeder.Stats().SilenceFills)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop signals shutdown
func (s *Session) Stop() {
	s.shutdown.Signal()
}

// Done is closed once shutdown is signaled
func (s *Session) Done() <-chan struct{} {
	return s.shutdown.Done()
}

// SetVolume sets the output volume (0-100)
func (s *Session) SetVolume(volume int) {
	s.out.SetVolume(volume)
}

// SetMuted sets the output mute state
func (s *Session) SetMuted(muted bool) {
	s.out.SetMuted(muted)
}

// Close stops playback and releases output, decoder and source
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.shutdown.Signal()

		var errs []error
		if err := s.out.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close output: %w", err))
		}
		if err := s.engine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close decoder: %w", err))
		}
		if err := s.src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close source: %w", err))
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// Stats returns a snapshot of the pipeline counters
func (s *Session) Stats() Stats {
	return Stats{
		Queued:     s.queue.Len(),
		QueueBytes: s.queue.Size(),
		Queue:      s.queue.Stats(),
		Demux:      s.driver.Stats(),
		Decode:     s.engine.Stats(),
		Feed:       s.feeder.Stats(),
	}
}

// Format describes the stream being played
func (s *Session) Format() audio.Format {
	return s.src.Format()
}

// SessionID returns the session's unique id
func (s *Session) SessionID() string {
	return s.id
}

func (s *Session) logf(format string, args ...any) {
	log.Printf("[%s] "+format, append([]any{s.id[:8]}, args...)...)
}
