package readaloud

import (
	"encoding/binary"
	"fmt"
	"math"
)

// AudioClip holds decoded PCM audio as per-channel float64 samples in the
// range [-1, 1]. All channels have the same length.
type AudioClip struct {
	// SampleRate is the number of frames per second (e.g., 44100).
	SampleRate int

	// Channels holds one sample slice per channel (1 = mono, 2 = stereo).
	Channels [][]float64
}

// Frames returns the number of sample frames in the clip.
func (c *AudioClip) Frames() int {
	if len(c.Channels) == 0 {
		return 0
	}
	return len(c.Channels[0])
}

// Duration returns the clip length in seconds.
func (c *AudioClip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(c.Frames()) / float64(c.SampleRate)
}

// ExtractClip returns the [start, end) time slice of src as a new clip.
//
// Invalid bounds degrade gracefully: when start is negative, the window is
// empty or reversed, or either bound falls outside the source, the full
// source is returned unchanged. A flashcard with a whole-chapter clip is
// still usable; one with silence is not.
func ExtractClip(src *AudioClip, start, end float64) *AudioClip {
	duration := src.Duration()
	if start < 0 || end <= start || start >= duration || end > duration {
		return src
	}

	startFrame := int(start * float64(src.SampleRate))
	endFrame := int(end * float64(src.SampleRate))
	total := src.Frames()
	if endFrame > total {
		endFrame = total
	}
	if startFrame >= endFrame {
		return src
	}

	out := &AudioClip{
		SampleRate: src.SampleRate,
		Channels:   make([][]float64, len(src.Channels)),
	}
	for i, ch := range src.Channels {
		seg := make([]float64, endFrame-startFrame)
		copy(seg, ch[startFrame:endFrame])
		out.Channels[i] = seg
	}
	return out
}

const (
	wavHeaderSize    = 44
	wavPCMFormat     = 1
	wavBitsPerSample = 16
)

// EncodeWAV encodes the clip as a 16-bit PCM RIFF/WAVE file.
//
// Samples are clamped to [-1, 1] and scaled asymmetrically: negative values
// by 0x8000 and positive by 0x7FFF, so both rails map onto the full int16
// range without overflow. Channels are interleaved per frame.
func EncodeWAV(c *AudioClip) ([]byte, error) {
	numChannels := len(c.Channels)
	if numChannels == 0 {
		return nil, fmt.Errorf("readaloud: encode wav: no channels")
	}
	if c.SampleRate <= 0 {
		return nil, fmt.Errorf("readaloud: encode wav: invalid sample rate %d", c.SampleRate)
	}
	frames := c.Frames()
	for i, ch := range c.Channels {
		if len(ch) != frames {
			return nil, fmt.Errorf("readaloud: encode wav: channel %d has %d frames, want %d", i, len(ch), frames)
		}
	}

	bytesPerSample := wavBitsPerSample / 8
	blockAlign := numChannels * bytesPerSample
	byteRate := c.SampleRate * blockAlign
	dataSize := frames * blockAlign

	buf := make([]byte, wavHeaderSize+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], wavPCMFormat)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(c.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], wavBitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	off := wavHeaderSize
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < numChannels; ch++ {
			binary.LittleEndian.PutUint16(buf[off:off+2], uint16(pcm16(c.Channels[ch][frame])))
			off += 2
		}
	}

	return buf, nil
}

// pcm16 converts one float sample to int16 PCM.
func pcm16(s float64) int16 {
	s = math.Max(-1, math.Min(1, s))
	if s < 0 {
		return int16(s * 0x8000)
	}
	return int16(s * 0x7FFF)
}

// DecodeWAV parses a 16-bit PCM RIFF/WAVE file into an AudioClip. Chunks
// other than fmt and data are skipped. Only uncompressed 16-bit PCM is
// supported; narrated books in the wild ship MP3 or WAV, and MP3 decoding is
// the host application's concern.
func DecodeWAV(data []byte) (*AudioClip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("readaloud: decode wav: not a RIFF/WAVE file")
	}

	var (
		sampleRate  int
		numChannels int
		bitsPerSamp int
		haveFmt     bool
		pcm         []byte
	)

	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		off += 8
		if size < 0 || off+size > len(data) {
			return nil, fmt.Errorf("readaloud: decode wav: truncated %s chunk", id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("readaloud: decode wav: short fmt chunk")
			}
			format := int(binary.LittleEndian.Uint16(data[off : off+2]))
			if format != wavPCMFormat {
				return nil, fmt.Errorf("readaloud: decode wav: unsupported format %d", format)
			}
			numChannels = int(binary.LittleEndian.Uint16(data[off+2 : off+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
			bitsPerSamp = int(binary.LittleEndian.Uint16(data[off+14 : off+16]))
			haveFmt = true
		case "data":
			pcm = data[off : off+size]
		}

		off += size
		if size%2 == 1 {
			off++ // chunks are word-aligned
		}
	}

	if !haveFmt {
		return nil, fmt.Errorf("readaloud: decode wav: missing fmt chunk")
	}
	if pcm == nil {
		return nil, fmt.Errorf("readaloud: decode wav: missing data chunk")
	}
	if bitsPerSamp != wavBitsPerSample {
		return nil, fmt.Errorf("readaloud: decode wav: unsupported bit depth %d", bitsPerSamp)
	}
	if numChannels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("readaloud: decode wav: invalid fmt chunk")
	}

	bytesPerFrame := numChannels * 2
	frames := len(pcm) / bytesPerFrame

	clip := &AudioClip{
		SampleRate: sampleRate,
		Channels:   make([][]float64, numChannels),
	}
	for ch := range clip.Channels {
		clip.Channels[ch] = make([]float64, frames)
	}

	for frame := 0; frame < frames; frame++ {
		base := frame * bytesPerFrame
		for ch := 0; ch < numChannels; ch++ {
			v := int16(binary.LittleEndian.Uint16(pcm[base+ch*2 : base+ch*2+2]))
			if v < 0 {
				clip.Channels[ch][frame] = float64(v) / 0x8000
			} else {
				clip.Channels[ch][frame] = float64(v) / 0x7FFF
			}
		}
	}

	return clip, nil
}
