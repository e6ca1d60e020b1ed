// ABOUTME: Command-line and environment configuration
// ABOUTME: Parses flags whose defaults come from RESONATE_PLAY_* variables and .env
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-play/pkg/player"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "RESONATE_PLAY_"

// DefaultEnvFile is read when present
const DefaultEnvFile = ".env"

var (
	demuxers = []string{"auto", "ffmpeg", "native"}
	decoders = []string{"ffmpeg", "native"}
)

// Config holds player configuration
type Config struct {
	File         string
	Backend      string
	BufferFrames int
	Demuxer      string
	Decoder      string
	MaxPackets   int
	MaxWait      time.Duration
	Drain        bool
	Tone         time.Duration
	Volume       int
	LogFile      string
	NoTUI        bool
}

// Load parses args with defaults from the environment, then from the
// given env files (DefaultEnvFile when none are named). Process
// environment wins over files.
func Load(args []string, envFiles ...string) (*Config, error) {
	fileEnv, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}

	return Parse(args, lookup)
}

func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return map[string]string{}, nil
		}
		files = []string{DefaultEnvFile}
	}

	env, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return env, nil
}

// env resolves typed defaults from a lookup function
type env struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *env) getString(name, def string) string {
	if v, ok := e.lookup(EnvPrefix + name); ok {
		return v
	}
	return def
}

func (e *env) getInt(name string, def int) int {
	v, ok := e.lookup(EnvPrefix + name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(name, err)
		return def
	}
	return n
}

func (e *env) getBool(name string, def bool) bool {
	v, ok := e.lookup(EnvPrefix + name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(name, err)
		return def
	}
	return b
}

func (e *env) getDuration(name string, def time.Duration) time.Duration {
	v, ok := e.lookup(EnvPrefix + name)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(name, err)
		return def
	}
	return d
}

func (e *env) fail(name string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
	}
}

// Parse parses args using lookup for flag defaults
func Parse(args []string, lookup func(string) (string, bool)) (*Config, error) {
	e := &env{lookup: lookup}
	cfg := &Config{}

	fs := flag.NewFlagSet("resonate-play", flag.ContinueOnError)
	fs.StringVar(&cfg.File, "file", e.getString("FILE", ""), "Media file to play (or pass as argument)")
	fs.StringVar(&cfg.Backend, "backend", e.getString("BACKEND", "oto"), "Audio output backend: oto, malgo, portaudio")
	fs.IntVar(&cfg.BufferFrames, "buffer-frames", e.getInt("BUFFER_FRAMES", 1024), "Device buffer size in sample frames")
	fs.StringVar(&cfg.Demuxer, "demuxer", e.getString("DEMUXER", "auto"), "Demuxer: auto, ffmpeg, native")
	fs.StringVar(&cfg.Decoder, "decoder", e.getString("DECODER", "ffmpeg"), "Decoder: ffmpeg, native")
	fs.IntVar(&cfg.MaxPackets, "max-packets", e.getInt("MAX_PACKETS", 0), "Packet queue cap (0 = unbounded)")
	fs.DurationVar(&cfg.MaxWait, "max-wait", e.getDuration("MAX_WAIT", 0), "Longest wait for a packet before playing silence (0 = wait forever)")
	fs.BoolVar(&cfg.Drain, "drain", e.getBool("DRAIN", true), "Play out queued audio at end of input before stopping")
	fs.DurationVar(&cfg.Tone, "tone", e.getDuration("TONE", 0), "Play a 440Hz test tone for this long instead of a file")
	fs.IntVar(&cfg.Volume, "volume", e.getInt("VOLUME", 100), "Initial volume (0-100)")
	fs.StringVar(&cfg.LogFile, "log-file", e.getString("LOG_FILE", "resonate-play.log"), "Log file path")
	fs.BoolVar(&cfg.NoTUI, "no-tui", e.getBool("NO_TUI", false), "Disable TUI, use streaming logs instead")

	if e.err != nil {
		return nil, e.err
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() > 1 {
		return nil, fmt.Errorf("expected one media file, got %d arguments", fs.NArg())
	}
	if fs.NArg() == 1 {
		cfg.File = fs.Arg(0)
	}

	return cfg, nil
}

// Validate checks option values
func (c *Config) Validate() error {
	var errs []error

	if c.File == "" && c.Tone == 0 {
		errs = append(errs, errors.New("no media file given (pass a path or -tone)"))
	}
	if !slices.Contains(output.Backends, c.Backend) {
		errs = append(errs, fmt.Errorf("unknown backend: %s", c.Backend))
	}
	if !slices.Contains(demuxers, c.Demuxer) {
		errs = append(errs, fmt.Errorf("unknown demuxer: %s", c.Demuxer))
	}
	if !slices.Contains(decoders, c.Decoder) {
		errs = append(errs, fmt.Errorf("unknown decoder: %s", c.Decoder))
	}
	if c.BufferFrames <= 0 {
		errs = append(errs, fmt.Errorf("buffer-frames must be positive: %d", c.BufferFrames))
	}
	if c.MaxPackets < 0 {
		errs = append(errs, fmt.Errorf("max-packets must not be negative: %d", c.MaxPackets))
	}
	if c.MaxWait < 0 {
		errs = append(errs, fmt.Errorf("max-wait must not be negative: %s", c.MaxWait))
	}
	if c.Tone < 0 {
		errs = append(errs, fmt.Errorf("tone must not be negative: %s", c.Tone))
	}
	if c.Volume < 0 || c.Volume > 100 {
		errs = append(errs, fmt.Errorf("volume out of range (0-100): %d", c.Volume))
	}

	return errors.Join(errs...)
}

// Session returns the playback session settings
func (c *Config) Session() player.Config {
	return player.Config{
		File:         c.File,
		Backend:      c.Backend,
		BufferFrames: c.BufferFrames,
		Demuxer:      c.Demuxer,
		Decoder:      c.Decoder,
		MaxPackets:   c.MaxPackets,
		MaxWait:      c.MaxWait,
		Drain:        c.Drain,
		Tone:         c.Tone,
		Volume:       c.Volume,
	}
}
