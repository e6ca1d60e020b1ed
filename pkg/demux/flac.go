// ABOUTME: FLAC packet source
// ABOUTME: Parses FLAC frames with mewkiz/flac and emits them as 16-bit PCM
package demux

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACSource reads from a FLAC file
type FLACSource struct {
	file     *os.File
	stream   *flac.Stream
	format   audio.Format
	bitDepth int
	buf      []byte
}

// NewFLACSource creates a new FLAC source
func NewFLACSource(filePath string) (*FLACSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	sampleRate := int(info.SampleRate)
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)

	log.Printf("Loaded FLAC: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		filepath.Base(filePath), sampleRate, channels, bitDepth)

	return &FLACSource{
		file:     f,
		stream:   stream,
		format:   rawFormat(sampleRate, channels),
		bitDepth: bitDepth,
	}, nil
}

func (s *FLACSource) Format() audio.Format { return s.format }
func (s *FLACSource) AudioStream() int     { return 0 }

// ReadPacket returns the next FLAC frame interleaved as 16-bit PCM
func (s *FLACSource) ReadPacket() (audio.Packet, error) {
	frame, err := s.stream.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return audio.Packet{}, io.EOF
		}
		return audio.Packet{}, fmt.Errorf("failed to parse FLAC frame: %w", err)
	}

	channels := s.format.Channels
	if len(frame.Subframes) < channels {
		return audio.Packet{}, fmt.Errorf("FLAC frame has %d subframes, expected %d", len(frame.Subframes), channels)
	}

	blockSize := int(frame.BlockSize)
	size := blockSize * channels * 2
	if cap(s.buf) < size {
		s.buf = make([]byte, size)
	}
	buf := s.buf[:size]

	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < channels; ch++ {
			sample := audio.ScaleToInt16(frame.Subframes[ch].Samples[i], s.bitDepth)
			binary.LittleEndian.PutUint16(buf[(i*channels+ch)*2:], uint16(sample))
		}
	}

	return audio.Packet{Data: buf}, nil
}

func (s *FLACSource) Close() error {
	return s.file.Close()
}
