package decode

import (
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tejashwikalptaru/revscope/internal/domain"
)

// ExportBitDepth is the sample size of exported WAV files.
const ExportBitDepth = 16

// ExportWAV writes buf as 16-bit PCM WAV. With an empty path the file is
// written to the temp directory as reversed_<source name>.wav.
// The written path is returned.
func (p *Processor) ExportWAV(buf *domain.AudioBuffer, path string) (string, error) {
	if buf == nil {
		return "", domain.ErrNoReversedSignal
	}
	if path == "" {
		path = DefaultExportPath(os.TempDir(), buf.SourcePath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", domain.NewAudioEngineError("export", "cannot create export directory", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", domain.NewAudioEngineError("export", "cannot create "+path, err)
	}

	if err := writeWAV(f, buf); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", domain.NewAudioEngineError("export", "cannot write "+path, err)
	}
	if err := f.Close(); err != nil {
		return "", domain.NewAudioEngineError("export", "cannot close "+path, err)
	}

	p.logger.Debug("exported wav", slog.String("path", path), slog.Int("frames", buf.Frames()))
	return path, nil
}

// DefaultExportPath returns dir/reversed_<name>.wav for the given source file.
func DefaultExportPath(dir, sourcePath string) string {
	return filepath.Join(dir, domain.ExportFileName(sourcePath))
}

func writeWAV(f *os.File, buf *domain.AudioBuffer) error {
	channels := buf.ChannelCount()
	if channels == 0 {
		return errors.New("buffer has no channels")
	}
	frames := buf.Frames()

	data := make([]int, frames*channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			data[i*channels+ch] = toInt16(buf.Channels[ch][i])
		}
	}

	enc := wav.NewEncoder(f, buf.SampleRate, ExportBitDepth, channels, wavFormatPCM)
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: ExportBitDepth,
	}
	if err := enc.Write(ib); err != nil {
		return err
	}
	return enc.Close()
}

func toInt16(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	s := math.Round(v * 32767)
	return int(max(-32768, min(32767, s)))
}
