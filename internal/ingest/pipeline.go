// Package ingest turns raw file selections into validated, previewable
// upload candidates.
//
// Validation is per file: one oversized or mistyped file never blocks the
// rest of its batch. Every candidate created from local bytes owns exactly
// one preview handle, and the pipeline revokes that handle synchronously
// whenever the candidate leaves the active set, whether by explicit
// removal, single-file replacement, or truncation past the file limit.
// Leaked handles are a memory-growth bug, not a cosmetic one.
package ingest

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Avinash9608/Furniture-sub006/internal/catalog"
	"github.com/Avinash9608/Furniture-sub006/internal/logging"
)

// Rejection reasons reported per file.
const (
	ReasonSize = "size"
	ReasonType = "type"
)

// Config bounds one ingestion surface (one form's image picker).
type Config struct {
	// Multiple selects append semantics; when false a new selection
	// replaces the current candidate.
	Multiple bool
	// MaxFiles caps the combined candidate set. Zero means no cap.
	MaxFiles int
	// MaxSizeBytes caps a single file. Zero means no cap.
	MaxSizeBytes int64
	// AcceptPattern is a MIME pattern; a trailing "/*" matches by prefix
	// ("image/*" accepts "image/png"). Empty accepts everything.
	AcceptPattern string
}

// File is one raw selected file.
type File struct {
	Name      string
	SizeBytes int64
	MIMEType  string
	Data      []byte
}

// Rejection names a file that failed validation and why.
type Rejection struct {
	Name   string
	Reason string
}

// Result is the outcome of one ingestion batch. Accepted is the full
// merged candidate set, not just the newly added files.
type Result struct {
	Accepted []*catalog.UploadCandidate
	Rejected []Rejection
}

// Pipeline validates selections and manages preview-handle lifecycles.
type Pipeline struct {
	previewer catalog.Previewer
	ids       catalog.IDGenerator
	logger    *zap.Logger
}

// New constructs a Pipeline.
func New(previewer catalog.Previewer, ids catalog.IDGenerator, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		previewer: previewer,
		ids:       ids,
		logger:    logging.Or(logger),
	}
}

// Ingest validates selection file by file and merges the valid ones into
// current per cfg. With Multiple=false the new selection replaces the
// current candidate; with Multiple=true valid files append in insertion
// order and the combined set is truncated to MaxFiles keeping the
// earliest-inserted candidates. Candidates dropped by replacement or
// truncation have their preview handles revoked before Ingest returns.
// Candidates already in current are never re-validated.
func (p *Pipeline) Ingest(selection []File, current []*catalog.UploadCandidate, cfg Config) Result {
	var res Result

	var fresh []*catalog.UploadCandidate
	for _, f := range selection {
		if reason, ok := p.validate(f, cfg); !ok {
			res.Rejected = append(res.Rejected, Rejection{Name: f.Name, Reason: reason})
			p.logger.Debug("file rejected",
				zap.String("name", f.Name),
				zap.String("reason", reason),
				zap.Int64("size_bytes", f.SizeBytes),
			)
			continue
		}
		c, err := p.newCandidate(f)
		if err != nil {
			// Preview allocation failing is environmental, not the
			// file's fault; report it like a type rejection so the rest
			// of the batch still lands.
			res.Rejected = append(res.Rejected, Rejection{Name: f.Name, Reason: "preview"})
			p.logger.Warn("preview allocation failed", zap.String("name", f.Name), zap.Error(err))
			continue
		}
		fresh = append(fresh, c)
	}

	var merged []*catalog.UploadCandidate
	if cfg.Multiple {
		merged = append(merged, current...)
		merged = append(merged, fresh...)
	} else {
		if len(fresh) > 0 {
			p.ReleaseAll(current)
			merged = fresh[:1]
			// A single-file picker can still receive a multi-file drop;
			// everything past the first valid file is dropped.
			p.ReleaseAll(fresh[1:])
		} else {
			merged = append(merged, current...)
		}
	}

	max := cfg.MaxFiles
	if !cfg.Multiple && (max == 0 || max > 1) {
		max = 1
	}
	if max > 0 && len(merged) > max {
		// FIFO retention: the earliest-inserted candidates survive.
		p.ReleaseAll(merged[max:])
		merged = merged[:max]
	}

	for i, c := range merged {
		c.SequenceIndex = i
	}
	res.Accepted = merged
	return res
}

// Remove drops the candidate at index i, revoking exactly its preview
// handle, and returns the reindexed remainder.
func (p *Pipeline) Remove(current []*catalog.UploadCandidate, i int) []*catalog.UploadCandidate {
	if i < 0 || i >= len(current) {
		return current
	}
	p.Release(current[i])
	out := append(current[:i:i], current[i+1:]...)
	for j, c := range out {
		c.SequenceIndex = j
	}
	return out
}

// Release revokes the candidate's preview handle, if it holds one. It is
// synchronous and idempotent so it is safe on teardown paths.
func (p *Pipeline) Release(c *catalog.UploadCandidate) {
	if c == nil || c.PreviewHandle == "" {
		return
	}
	p.previewer.Revoke(c.PreviewHandle)
	c.PreviewHandle = ""
}

// ReleaseAll revokes every candidate's preview handle.
func (p *Pipeline) ReleaseAll(cs []*catalog.UploadCandidate) {
	for _, c := range cs {
		p.Release(c)
	}
}

func (p *Pipeline) validate(f File, cfg Config) (string, bool) {
	if cfg.MaxSizeBytes > 0 && f.SizeBytes > cfg.MaxSizeBytes {
		return ReasonSize, false
	}
	if !matchMIME(f.MIMEType, cfg.AcceptPattern) {
		return ReasonType, false
	}
	return "", true
}

func (p *Pipeline) newCandidate(f File) (*catalog.UploadCandidate, error) {
	id, err := p.ids.NewID()
	if err != nil {
		return nil, err
	}
	handle, err := p.previewer.Allocate(f.Name, f.Data)
	if err != nil {
		return nil, err
	}
	return &catalog.UploadCandidate{
		ID:            id,
		Name:          f.Name,
		SizeBytes:     f.SizeBytes,
		MIMEType:      f.MIMEType,
		Origin:        catalog.OriginNew,
		Data:          f.Data,
		PreviewHandle: handle,
	}, nil
}

// Existing wraps an already-persisted server reference as a candidate.
// Its bytes are not locally available, so it is never size/type validated
// and carries no preview handle obligation.
func Existing(ref string, seq int) *catalog.UploadCandidate {
	return &catalog.UploadCandidate{
		Name:          ref,
		Origin:        catalog.OriginExisting,
		Ref:           ref,
		SequenceIndex: seq,
	}
}

func matchMIME(mimeType, pattern string) bool {
	if pattern == "" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(mimeType, prefix+"/")
	}
	return mimeType == pattern
}
