package readaloud

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodeWAV_Header(t *testing.T) {
	clip := buildTestClip(44100, 1.0, 0)

	data, err := EncodeWAV(clip)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(data) != 44+44100*2 {
		t.Fatalf("len(data) = %d, want %d", len(data), 44+44100*2)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		t.Error("missing fmt/data chunk ids")
	}
	if got := binary.LittleEndian.Uint32(data[4:8]); got != uint32(36+44100*2) {
		t.Errorf("RIFF size = %d", got)
	}
	if got := binary.LittleEndian.Uint16(data[20:22]); got != 1 {
		t.Errorf("format = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != 44100 {
		t.Errorf("sample rate = %d", got)
	}
	if got := binary.LittleEndian.Uint32(data[28:32]); got != 88200 {
		t.Errorf("byte rate = %d", got)
	}
	if got := binary.LittleEndian.Uint16(data[32:34]); got != 2 {
		t.Errorf("block align = %d", got)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Errorf("bits per sample = %d", got)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(44100*2) {
		t.Errorf("data size = %d", got)
	}
}

func TestEncodeWAV_SampleScaling(t *testing.T) {
	clip := &AudioClip{
		SampleRate: 8000,
		Channels:   [][]float64{{-1, -0.5, 0, 0.5, 1, -2, 2}},
	}

	data, err := EncodeWAV(clip)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int16{-0x8000, -0x4000, 0, 0x3FFF, 0x7FFF, -0x8000, 0x7FFF}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(data[44+i*2 : 46+i*2]))
		if got != w {
			t.Errorf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestEncodeWAV_StereoInterleaving(t *testing.T) {
	clip := &AudioClip{
		SampleRate: 8000,
		Channels: [][]float64{
			{0.5, 0.5},
			{-0.5, -0.5},
		},
	}

	data, err := EncodeWAV(clip)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != 2 {
		t.Fatalf("channels = %d", got)
	}

	l := int16(binary.LittleEndian.Uint16(data[44:46]))
	r := int16(binary.LittleEndian.Uint16(data[46:48]))
	if l != 0x3FFF || r != -0x4000 {
		t.Errorf("first frame = (%d, %d), want left then right", l, r)
	}
}

func TestEncodeWAV_Errors(t *testing.T) {
	if _, err := EncodeWAV(&AudioClip{SampleRate: 8000}); err == nil {
		t.Error("expected error for zero channels")
	}
	if _, err := EncodeWAV(&AudioClip{Channels: [][]float64{{0}}}); err == nil {
		t.Error("expected error for zero sample rate")
	}
	ragged := &AudioClip{SampleRate: 8000, Channels: [][]float64{{0, 0}, {0}}}
	if _, err := EncodeWAV(ragged); err == nil {
		t.Error("expected error for ragged channels")
	}
}

func TestDecodeWAV_RoundTrip(t *testing.T) {
	src := &AudioClip{
		SampleRate: 22050,
		Channels:   [][]float64{{-1, -0.25, 0, 0.25, 1}},
	}

	data, err := EncodeWAV(src)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.SampleRate != 22050 || len(got.Channels) != 1 {
		t.Fatalf("decoded shape: rate=%d channels=%d", got.SampleRate, len(got.Channels))
	}
	for i, want := range src.Channels[0] {
		if math.Abs(got.Channels[0][i]-want) > 1.0/0x7FFF {
			t.Errorf("sample %d = %v, want ~%v", i, got.Channels[0][i], want)
		}
	}
}

func TestDecodeWAV_Invalid(t *testing.T) {
	if _, err := DecodeWAV([]byte("not audio")); err == nil {
		t.Error("expected error for junk input")
	}
	// Valid header but 8-bit depth.
	clip := buildTestClip(8000, 0.01, 0)
	data, _ := EncodeWAV(clip)
	binary.LittleEndian.PutUint16(data[34:36], 8)
	if _, err := DecodeWAV(data); err == nil {
		t.Error("expected error for unsupported bit depth")
	}
}

func TestExtractClip_Normal(t *testing.T) {
	src := buildTestClip(1000, 10, 0.5)

	clip := ExtractClip(src, 2, 4.5)
	if clip == src {
		t.Fatal("expected a new clip")
	}
	if got := clip.Frames(); got != 2500 {
		t.Errorf("Frames = %d, want 2500", got)
	}
	if got := clip.Duration(); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("Duration = %v, want 2.5", got)
	}
}

func TestExtractClip_InvalidBoundsReturnFullSource(t *testing.T) {
	src := buildTestClip(1000, 10, 0.5)

	tests := []struct {
		name       string
		start, end float64
	}{
		{"negative start", -1, 5},
		{"zero window", 3, 3},
		{"reversed window", 5, 3},
		{"start past duration", 11, 12},
		{"end past duration", 8, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractClip(src, tt.start, tt.end); got != src {
				t.Error("expected the full source clip back")
			}
		})
	}
}

func TestExtractClip_FromEncodedNarration(t *testing.T) {
	// A 9 second narration; the clip window [2, 5) must survive an
	// encode/decode cycle and come back as 3.0 seconds of audio.
	src := buildTestClip(8000, 9, 0.25)
	data, err := EncodeWAV(src)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	clip := ExtractClip(decoded, 2, 5)
	if got := clip.Duration(); math.Abs(got-3.0) > 1.0/8000 {
		t.Errorf("Duration = %v, want 3.0", got)
	}

	wav, err := EncodeWAV(clip)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if len(wav) != 44+clip.Frames()*2 {
		t.Errorf("encoded size = %d", len(wav))
	}
}

func TestAudioClip_EmptyDuration(t *testing.T) {
	empty := &AudioClip{SampleRate: 44100}
	if empty.Frames() != 0 || empty.Duration() != 0 {
		t.Error("empty clip should have zero frames and duration")
	}
}
