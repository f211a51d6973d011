// Package decode implements ports.AudioProcessor with pure Go codecs:
// go-mp3, go-audio/wav, mewkiz/flac and jfreymuth/oggvorbis. Tags are read
// with dhowden/tag.
package decode

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/dsp"
	"github.com/tejashwikalptaru/revscope/internal/ports"
)

// decodeFunc turns an open file into planar samples in [-1, 1].
type decodeFunc func(f *os.File) (*pcm, error)

// pcm is the raw result of a decoder before it becomes a buffer.
type pcm struct {
	channels   [][]float64
	sampleRate int
	bitDepth   int
}

var decoders = map[string]decodeFunc{
	"mp3":  decodeMP3,
	"wav":  decodeWAV,
	"flac": decodeFLAC,
	"ogg":  decodeOGG,
}

// Processor decodes, transforms and exports audio files.
//
// Thread-safety: Processor is stateless and safe for concurrent use.
type Processor struct {
	logger *slog.Logger
}

// NewProcessor creates a new processor.
func NewProcessor(logger *slog.Logger) *Processor {
	return &Processor{logger: logger}
}

// Load decodes the file at path. The format is taken from the extension.
func (p *Processor) Load(path string) (*domain.AudioBuffer, error) {
	format := formatOf(path)
	decode, ok := decoders[format]
	if !ok {
		return nil, domain.NewDecodeError(path, format, domain.ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %w", domain.ErrFileNotFound, err)
		}
		return nil, domain.NewDecodeError(path, format, err)
	}
	defer f.Close()

	out, err := decode(f)
	if err != nil {
		return nil, domain.NewDecodeError(path, format, err)
	}
	if out.sampleRate <= 0 || len(out.channels) == 0 {
		return nil, domain.NewDecodeError(path, format, fmt.Errorf("stream has no audio (rate %d, %d channels)", out.sampleRate, len(out.channels)))
	}

	p.logger.Debug("decoded audio",
		slog.String("path", path),
		slog.String("format", format),
		slog.Int("sample_rate", out.sampleRate),
		slog.Int("channels", len(out.channels)),
		slog.Int("frames", len(out.channels[0])))

	return domain.NewAudioBuffer(out.channels, out.sampleRate, out.bitDepth, path, format), nil
}

// Reverse returns a reversed copy of buf.
func (p *Processor) Reverse(buf *domain.AudioBuffer) *domain.AudioBuffer {
	return dsp.Reverse(buf)
}

// ChangeSpeed resamples buf so it plays factor times faster.
func (p *Processor) ChangeSpeed(buf *domain.AudioBuffer, factor float64) (*domain.AudioBuffer, error) {
	return dsp.ChangeSpeed(buf, factor)
}

// Metadata describes buf and adds the title, artist and album tags of its
// source file when present.
func (p *Processor) Metadata(buf *domain.AudioBuffer) domain.AudioMetadata {
	meta := domain.MetadataFor(buf)
	if buf.SourcePath == "" {
		return meta
	}

	file, err := os.Open(buf.SourcePath)
	if err != nil {
		return meta
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil || tags == nil {
		// Untagged files are common; WAV never carries tags we can read
		return meta
	}
	meta.Title = strings.TrimSpace(tags.Title())
	meta.Artist = strings.TrimSpace(tags.Artist())
	meta.Album = strings.TrimSpace(tags.Album())
	return meta
}

// SupportedFormats returns the extensions Load accepts, without dots.
func (p *Processor) SupportedFormats() []string {
	return []string{"mp3", "wav", "flac", "ogg"}
}

// formatOf returns the lower-case extension of path without the dot.
func formatOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Verify interface implementation
var _ ports.AudioProcessor = (*Processor)(nil)
