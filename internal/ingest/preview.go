package ingest

import (
	"fmt"
	"path"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Avinash9608/Furniture-sub006/internal/catalog"
	"github.com/Avinash9608/Furniture-sub006/internal/logging"
)

// FilePreviewer materializes preview handles as files under a spool
// directory on an injected filesystem. Revoke deletes the file in place;
// it does not suspend, so it is safe to call on teardown paths.
type FilePreviewer struct {
	fs     afero.Fs
	dir    string
	ids    catalog.IDGenerator
	logger *zap.Logger

	mu   sync.Mutex
	live map[string]bool
}

var _ catalog.Previewer = (*FilePreviewer)(nil)

// NewFilePreviewer builds a FilePreviewer spooling under dir.
func NewFilePreviewer(fs afero.Fs, dir string, ids catalog.IDGenerator, logger *zap.Logger) *FilePreviewer {
	return &FilePreviewer{
		fs:     fs,
		dir:    dir,
		ids:    ids,
		logger: logging.Or(logger),
		live:   make(map[string]bool),
	}
}

// Allocate writes the file's bytes to the spool and returns the path as
// the handle.
func (p *FilePreviewer) Allocate(name string, data []byte) (string, error) {
	id, err := p.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("preview id: %w", err)
	}
	if err := p.fs.MkdirAll(p.dir, 0o750); err != nil {
		return "", fmt.Errorf("create preview dir: %w", err)
	}

	handle := path.Join(p.dir, id+"-"+path.Base(name))
	if err := afero.WriteFile(p.fs, handle, data, 0o600); err != nil {
		return "", fmt.Errorf("write preview: %w", err)
	}

	p.mu.Lock()
	p.live[handle] = true
	p.mu.Unlock()
	return handle, nil
}

// Revoke removes the spooled file. Unknown handles are ignored.
func (p *FilePreviewer) Revoke(handle string) {
	p.mu.Lock()
	known := p.live[handle]
	delete(p.live, handle)
	p.mu.Unlock()
	if !known {
		return
	}
	if err := p.fs.Remove(handle); err != nil {
		p.logger.Warn("preview removal failed", zap.String("handle", handle), zap.Error(err))
	}
}

// Live returns the number of handles not yet revoked.
func (p *FilePreviewer) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}
