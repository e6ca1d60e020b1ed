// ABOUTME: MP3 packet source
// ABOUTME: Decodes MP3 with go-mp3 and emits one frame of 16-bit PCM per packet
package demux

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

const (
	mp3SamplesPerFrame = 1152
	mp3Channels        = 2 // go-mp3 always outputs stereo
)

// MP3Source reads from an MP3 file
type MP3Source struct {
	file    *os.File
	decoder *mp3.Decoder
	format  audio.Format
	buf     []byte
}

// NewMP3Source creates a new MP3 source
func NewMP3Source(filePath string) (*MP3Source, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	log.Printf("Loaded MP3: %s (sample rate: %d Hz)", filepath.Base(filePath), decoder.SampleRate())

	return &MP3Source{
		file:    f,
		decoder: decoder,
		format:  rawFormat(decoder.SampleRate(), mp3Channels),
		buf:     make([]byte, mp3SamplesPerFrame*mp3Channels*2),
	}, nil
}

func (s *MP3Source) Format() audio.Format { return s.format }
func (s *MP3Source) AudioStream() int     { return 0 }

// ReadPacket returns the next MP3 frame as PCM
func (s *MP3Source) ReadPacket() (audio.Packet, error) {
	n, err := io.ReadFull(s.decoder, s.buf)
	if errors.Is(err, io.ErrUnexpectedEOF) && n > 0 {
		return audio.Packet{Data: s.buf[:n]}, nil
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return audio.Packet{}, io.EOF
		}
		return audio.Packet{}, fmt.Errorf("failed to decode MP3 frame: %w", err)
	}
	return audio.Packet{Data: s.buf}, nil
}

func (s *MP3Source) Close() error {
	return s.file.Close()
}
