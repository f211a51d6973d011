package mock

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/dsp"
	"github.com/tejashwikalptaru/revscope/internal/ports"
)

// Processor is an in-memory AudioProcessor. Files are registered with
// AddFile; exports are recorded instead of written.
//
// Thread-safety: This implementation is thread-safe.
type Processor struct {
	files    map[string]*domain.AudioBuffer
	exported map[string]*domain.AudioBuffer
	failLoad bool
	mu       sync.RWMutex
}

// NewProcessor creates an empty mock processor.
func NewProcessor() *Processor {
	return &Processor{
		files:    make(map[string]*domain.AudioBuffer),
		exported: make(map[string]*domain.AudioBuffer),
	}
}

// AddFile registers buf as the decoded content of path.
func (p *Processor) AddFile(path string, buf *domain.AudioBuffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	buf.SourcePath = path
	p.files[path] = buf
}

// SetFailLoad configures the mock to fail every Load (for testing).
func (p *Processor) SetFailLoad(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failLoad = fail
}

// Load returns the registered buffer for path.
func (p *Processor) Load(path string) (*domain.AudioBuffer, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	format := filepath.Ext(path)
	if p.failLoad {
		return nil, domain.NewDecodeError(path, format, domain.ErrUnsupportedFormat)
	}
	buf, ok := p.files[path]
	if !ok {
		return nil, domain.NewDecodeError(path, format, domain.ErrFileNotFound)
	}
	return buf, nil
}

// Reverse reverses the buffer.
func (p *Processor) Reverse(buf *domain.AudioBuffer) *domain.AudioBuffer {
	return dsp.Reverse(buf)
}

// ChangeSpeed resamples the buffer.
func (p *Processor) ChangeSpeed(buf *domain.AudioBuffer, factor float64) (*domain.AudioBuffer, error) {
	return dsp.ChangeSpeed(buf, factor)
}

// Metadata describes the buffer without reading tags.
func (p *Processor) Metadata(buf *domain.AudioBuffer) domain.AudioMetadata {
	return domain.MetadataFor(buf)
}

// ExportWAV records the export. An empty path resolves to the temp directory.
func (p *Processor) ExportWAV(buf *domain.AudioBuffer, path string) (string, error) {
	if buf == nil {
		return "", domain.ErrNoReversedSignal
	}
	if path == "" {
		path = filepath.Join(os.TempDir(), "reversed_mock.wav")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exported[path] = buf
	return path, nil
}

// Exported returns the buffer recorded for path, if any.
func (p *Processor) Exported(path string) (*domain.AudioBuffer, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	buf, ok := p.exported[path]
	return buf, ok
}

// SupportedFormats returns the formats the real processor accepts.
func (p *Processor) SupportedFormats() []string {
	return []string{"mp3", "wav", "flac", "ogg"}
}

// Verify interface implementation
var _ ports.AudioProcessor = (*Processor)(nil)
