// ABOUTME: Container stream inspection
// ABOUTME: Lists every stream of an input without decoding it
package ffmpeg

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"
)

// StreamInfo describes one stream of a container
type StreamInfo struct {
	Index      int
	MediaType  string
	Codec      string
	SampleRate int
	Channels   int
	Width      int
	Height     int
}

func (s StreamInfo) String() string {
	switch s.MediaType {
	case astiav.MediaTypeAudio.String():
		return fmt.Sprintf("#%d %s %s %dHz %dch", s.Index, s.MediaType, s.Codec, s.SampleRate, s.Channels)
	case astiav.MediaTypeVideo.String():
		return fmt.Sprintf("#%d %s %s %dx%d", s.Index, s.MediaType, s.Codec, s.Width, s.Height)
	default:
		return fmt.Sprintf("#%d %s %s", s.Index, s.MediaType, s.Codec)
	}
}

// Probe lists the streams of path
func Probe(path string) ([]StreamInfo, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, errors.New("failed to allocate format context")
	}
	defer fc.Free()

	if err := fc.OpenInput(path, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer fc.CloseInput()

	if err := fc.FindStreamInfo(nil); err != nil {
		return nil, fmt.Errorf("failed to find stream info: %w", err)
	}

	var infos []StreamInfo
	for _, st := range fc.Streams() {
		cp := st.CodecParameters()
		infos = append(infos, StreamInfo{
			Index:      st.Index(),
			MediaType:  cp.MediaType().String(),
			Codec:      cp.CodecID().Name(),
			SampleRate: cp.SampleRate(),
			Channels:   cp.ChannelLayout().Channels(),
			Width:      cp.Width(),
			Height:     cp.Height(),
		})
	}
	return infos, nil
}
