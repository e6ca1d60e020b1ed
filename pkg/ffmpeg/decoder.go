// ABOUTME: FFmpeg decode primitive
// ABOUTME: Sends packets to libavcodec and converts frames to interleaved S16
package ffmpeg

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio/decode"
	"github.com/asticode/go-astiav"
)

// Decoder decodes the source's audio stream
type Decoder struct {
	cc  *astiav.CodecContext
	swr *astiav.SoftwareResampleContext
	pkt *astiav.Packet
	src *astiav.Frame
	dst *astiav.Frame

	// sent is true once the current span has been accepted by the codec
	sent  bool
	frame decode.Frame
}

// NewDecoder opens a codec context for the source's audio stream
func (s *Source) NewDecoder() (*Decoder, error) {
	if s.codec == nil {
		return nil, fmt.Errorf("no decoder available for codec %s", s.format.Codec)
	}

	cc := astiav.AllocCodecContext(s.codec)
	if cc == nil {
		return nil, errors.New("failed to allocate codec context")
	}
	if err := cc.FromCodecParameters(s.stream.CodecParameters()); err != nil {
		cc.Free()
		return nil, fmt.Errorf("failed to copy codec parameters: %w", err)
	}
	cc.SetTimeBase(s.stream.TimeBase())

	if err := cc.Open(s.codec, nil); err != nil {
		cc.Free()
		return nil, fmt.Errorf("failed to open decoder: %w", err)
	}

	swr := astiav.AllocSoftwareResampleContext()
	if swr == nil {
		cc.Free()
		return nil, errors.New("failed to allocate resample context")
	}

	return &Decoder{
		cc:  cc,
		swr: swr,
		pkt: astiav.AllocPacket(),
		src: astiav.AllocFrame(),
		dst: astiav.AllocFrame(),
	}, nil
}

// Decode sends span to the codec once, then returns one frame per call
// without consuming. When the codec has no more frames the span is
// reported consumed.
func (d *Decoder) Decode(span []byte) (int, *decode.Frame, error) {
	if !d.sent {
		d.pkt.Unref()
		if err := d.pkt.FromData(span); err != nil {
			return 0, nil, fmt.Errorf("failed to wrap packet: %w", err)
		}
		err := d.cc.SendPacket(d.pkt)
		switch {
		case err == nil:
			d.sent = true
		case errors.Is(err, astiav.ErrEagain):
			// codec is full; drain a frame and resend on the next call
		default:
			return 0, nil, fmt.Errorf("failed to send packet: %w", err)
		}
	}

	d.src.Unref()
	if err := d.cc.ReceiveFrame(d.src); err != nil {
		sent := d.sent
		d.sent = false
		if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
			if !sent {
				return 0, nil, errors.New("decoder rejected packet and produced no frame")
			}
			return len(span), nil, nil
		}
		return 0, nil, fmt.Errorf("failed to receive frame: %w", err)
	}

	if err := d.convert(); err != nil {
		d.sent = false
		return 0, nil, err
	}
	return 0, &d.frame, nil
}

// convert turns the received frame into interleaved S16 with the same rate
// and layout
func (d *Decoder) convert() error {
	layout := d.src.ChannelLayout()
	if !layout.Valid() {
		layout = astiav.ChannelLayoutStereo
		if d.cc.ChannelLayout().Channels() == 1 {
			layout = astiav.ChannelLayoutMono
		}
		d.src.SetChannelLayout(layout)
	}

	d.dst.Unref()
	d.dst.SetNbSamples(d.src.NbSamples())
	d.dst.SetChannelLayout(layout)
	d.dst.SetSampleRate(d.src.SampleRate())
	d.dst.SetSampleFormat(astiav.SampleFormatS16)
	if err := d.dst.AllocBuffer(0); err != nil {
		return fmt.Errorf("failed to allocate output frame: %w", err)
	}

	if err := d.swr.ConvertFrame(d.src, d.dst); err != nil {
		return fmt.Errorf("failed to convert frame: %w", err)
	}

	b, err := d.dst.Data().Bytes(0)
	if err != nil {
		return fmt.Errorf("failed to read frame data: %w", err)
	}

	d.frame = decode.Frame{
		Data:           b,
		Samples:        d.dst.NbSamples(),
		Channels:       layout.Channels(),
		BytesPerSample: 2,
	}
	return nil
}

// FrameSize returns the PCM byte length of frame
func (d *Decoder) FrameSize(frame *decode.Frame) int {
	return decode.SampleBytes(frame)
}

// Close releases codec resources
func (d *Decoder) Close() error {
	if d.src != nil {
		d.src.Free()
	}
	if d.dst != nil {
		d.dst.Free()
	}
	if d.pkt != nil {
		d.pkt.Free()
	}
	if d.swr != nil {
		d.swr.Free()
	}
	if d.cc != nil {
		d.cc.Free()
	}
	*d = Decoder{}
	return nil
}
