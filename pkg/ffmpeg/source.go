// ABOUTME: FFmpeg container source
// ABOUTME: Reads packets of every stream and reports the best audio stream
package ffmpeg

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
	"github.com/asticode/go-astiav"
)

// Source reads packets from a container through libavformat
type Source struct {
	fc     *astiav.FormatContext
	stream *astiav.Stream
	codec  *astiav.Codec
	pkt    *astiav.Packet
	format audio.Format
}

// Open opens path and selects its best audio stream
func Open(path string) (*Source, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, errors.New("failed to allocate format context")
	}

	if err := fc.OpenInput(path, nil, nil); err != nil {
		fc.Free()
		return nil, fmt.Errorf("failed to open input: %w", err)
	}

	if err := fc.FindStreamInfo(nil); err != nil {
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("failed to find stream info: %w", err)
	}

	st, codec, err := fc.FindBestStream(astiav.MediaTypeAudio, -1, -1)
	if err != nil || st == nil {
		fc.CloseInput()
		fc.Free()
		if err != nil {
			return nil, fmt.Errorf("failed to find audio stream: %w", err)
		}
		return nil, errors.New("no audio stream found")
	}

	cp := st.CodecParameters()
	codecName := cp.CodecID().Name()
	format := audio.Format{
		Codec:      codecName,
		SampleRate: cp.SampleRate(),
		Channels:   cp.ChannelLayout().Channels(),
		BitDepth:   bitDepthFor(codecName),
	}

	log.Printf("Opened %s: stream %d of %d, %s",
		filepath.Base(path), st.Index(), len(fc.Streams()), format)

	return &Source{
		fc:     fc,
		stream: st,
		codec:  codec,
		pkt:    astiav.AllocPacket(),
		format: format,
	}, nil
}

func (s *Source) Format() audio.Format { return s.format }
func (s *Source) AudioStream() int     { return s.stream.Index() }

// ReadPacket returns the next packet of any stream. The payload is only
// valid until the next call.
func (s *Source) ReadPacket() (audio.Packet, error) {
	s.pkt.Unref()
	if err := s.fc.ReadFrame(s.pkt); err != nil {
		if errors.Is(err, astiav.ErrEof) {
			return audio.Packet{}, io.EOF
		}
		return audio.Packet{}, fmt.Errorf("failed to read frame: %w", err)
	}

	return audio.Packet{
		Data:        s.pkt.Data(),
		StreamIndex: s.pkt.StreamIndex(),
	}, nil
}

// Close releases the container
func (s *Source) Close() error {
	if s.pkt != nil {
		s.pkt.Free()
		s.pkt = nil
	}
	if s.fc != nil {
		s.fc.CloseInput()
		s.fc.Free()
		s.fc = nil
	}
	return nil
}

// bitDepthFor reports the sample width of raw PCM codecs, 16 otherwise
func bitDepthFor(codec string) int {
	switch codec {
	case "pcm_s24le", "pcm_s24be":
		return 24
	case "pcm_s32le", "pcm_s32be", "pcm_f32le", "pcm_f32be":
		return 32
	case "pcm_u8", "pcm_s8":
		return 8
	default:
		return audio.OutputBitDepth
	}
}
