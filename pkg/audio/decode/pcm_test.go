// ABOUTME: Tests for PCM decode primitive
// ABOUTME: Tests 16-bit pass-through, 24-bit narrowing and validation
package decode

import (
	"testing"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
)

func TestNewPCM(t *testing.T) {
	format := audio.Format{
		Codec:      "pcm",
		SampleRate: 48000,
		Channels:   2,
		BitDepth:   16,
	}

	decoder, err := NewPCM(format)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	if decoder == nil {
		t.Fatal("expected decoder to be created")
	}
}

func TestPCMDecode16Bit(t *testing.T) {
	decoder, err := NewPCM(audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 16})
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	// 2 full stereo frames plus one stray byte
	input := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	consumed, frame, err := decoder.Decode(input)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if consumed != len(input) {
		t.Errorf("expected %d bytes consumed, got %d", len(input), consumed)
	}
	if frame == nil {
		t.Fatal("expected a frame")
	}
	if frame.Samples != 2 {
		t.Errorf("expected 2 samples per channel, got %d", frame.Samples)
	}
	if size := decoder.FrameSize(frame); size != 8 {
		t.Errorf("expected frame size 8, got %d", size)
	}
	if frame.Data[2] != 0x02 {
		t.Errorf("expected pass-through data, got %v", frame.Data)
	}
}

func TestPCMDecode24Bit(t *testing.T) {
	decoder, err := NewPCM(audio.Format{Codec: "pcm_s24le", SampleRate: 96000, Channels: 1})
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	// 0x123456 -> 0x1234, 0xFFFF00 (-256) -> -1
	input := []byte{0x56, 0x34, 0x12, 0x00, 0xFF, 0xFF}
	consumed, frame, err := decoder.Decode(input)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if consumed != 6 {
		t.Errorf("expected 6 bytes consumed, got %d", consumed)
	}
	if decoder.FrameSize(frame) != 4 {
		t.Fatalf("expected 4 output bytes, got %d", decoder.FrameSize(frame))
	}

	samples := make([]int16, 2)
	audio.Int16s(samples, frame.Data)
	if samples[0] != 0x1234 {
		t.Errorf("expected first sample %d, got %d", 0x1234, samples[0])
	}
	if samples[1] != -1 {
		t.Errorf("expected second sample -1, got %d", samples[1])
	}
}

func TestPCMDecodeShortSpan(t *testing.T) {
	decoder, err := NewPCM(audio.Format{Codec: "pcm", Channels: 2, BitDepth: 16})
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	consumed, frame, err := decoder.Decode([]byte{0x01, 0x02})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if consumed != 2 {
		t.Errorf("expected fragment to be consumed, got %d", consumed)
	}
	if frame != nil {
		t.Error("expected no frame from a partial sample frame")
	}
}

func TestNewPCM_InvalidCodec(t *testing.T) {
	format := audio.Format{
		Codec:      "opus",
		SampleRate: 48000,
		Channels:   2,
		BitDepth:   16,
	}

	decoder, err := NewPCM(format)
	if err == nil {
		t.Fatal("expected error for invalid codec, got nil")
	}

	if decoder != nil {
		t.Fatal("expected decoder to be nil for invalid codec")
	}

	expectedError := "invalid codec for PCM decoder: opus"
	if err.Error() != expectedError {
		t.Errorf("expected error %q, got %q", expectedError, err.Error())
	}
}

func TestNewPCM_UnsupportedBitDepth(t *testing.T) {
	format := audio.Format{
		Codec:      "pcm",
		SampleRate: 48000,
		Channels:   2,
		BitDepth:   32,
	}

	decoder, err := NewPCM(format)
	if err == nil {
		t.Fatal("expected error for unsupported bit depth, got nil")
	}

	if decoder != nil {
		t.Fatal("expected decoder to be nil for unsupported bit depth")
	}

	expectedError := "unsupported bit depth: 32 (supported: 16, 24)"
	if err.Error() != expectedError {
		t.Errorf("expected error %q, got %q", expectedError, err.Error())
	}
}
