package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// WAV format tags accepted by decodeWAV.
const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// decodeMP3 decodes an MP3 stream. go-mp3 always produces 16-bit
// little-endian stereo.
func decodeMP3(f *os.File) (*pcm, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("reading MP3 frames: %w", err)
	}

	const channels = 2
	frames := len(raw) / (2 * channels)
	out := makeChannels(channels, frames)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			s := int16(binary.LittleEndian.Uint16(raw[off:]))
			out[ch][i] = float64(s) / 32768
		}
	}
	return &pcm{channels: out, sampleRate: dec.SampleRate(), bitDepth: 16}, nil
}

// decodeWAV decodes integer PCM WAV files of 8 to 32 bits.
func decodeWAV(f *os.File) (*pcm, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("unsupported WAV encoding %d", dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels == 0 || bitDepth == 0 {
		return nil, errors.New("WAV header has no channels or bit depth")
	}

	frames := len(buf.Data) / channels
	out := makeChannels(channels, frames)
	scale := float64(int64(1) << (bitDepth - 1))
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			v := buf.Data[i*channels+ch]
			if bitDepth == 8 {
				// 8-bit WAV is unsigned
				v -= 128
			}
			out[ch][i] = float64(v) / scale
		}
	}
	return &pcm{channels: out, sampleRate: int(dec.SampleRate), bitDepth: bitDepth}, nil
}

// decodeFLAC decodes a FLAC stream frame by frame.
func decodeFLAC(f *os.File) (*pcm, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bps := int(info.BitsPerSample)
	scale := float64(int64(1) << (bps - 1))

	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, 0, info.NSamples)
	}

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing FLAC frame: %w", err)
		}
		for ch := 0; ch < channels; ch++ {
			for _, s := range frame.Subframes[ch].Samples {
				out[ch] = append(out[ch], float64(s)/scale)
			}
		}
	}
	return &pcm{channels: out, sampleRate: int(info.SampleRate), bitDepth: bps}, nil
}

// decodeOGG decodes an Ogg Vorbis stream. Vorbis has no integer bit depth;
// it is reported as 16 bits.
func decodeOGG(f *os.File) (*pcm, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}

	channels := reader.Channels()
	if channels == 0 {
		return nil, errors.New("OGG stream has no channels")
	}
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, 0, max(reader.Length(), 0))
	}

	chunk := make([]float32, 4096*channels)
	for {
		n, err := reader.Read(chunk)
		for i := 0; i+channels <= n; i += channels {
			for ch := 0; ch < channels; ch++ {
				out[ch] = append(out[ch], float64(clamp32(chunk[i+ch])))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading OGG packets: %w", err)
		}
	}
	return &pcm{channels: out, sampleRate: reader.SampleRate(), bitDepth: 16}, nil
}

func makeChannels(channels, frames int) [][]float64 {
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	return out
}

func clamp32(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
