// Package policy loads permission overrides from a YAML seed file and keeps
// the store in step with it.
//
// File format:
//
//	overrides:
//	  - user_id: u1
//	    document_id: doc-42
//	    permission: COMMENT
//	    user_email: ada@example.com
package policy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/permission"
)

// File is a parsed override seed file.
type File struct {
	Overrides []permission.Override `yaml:"overrides"`

	// Checksum is the digest of the raw file content.
	Checksum string `yaml:"-"`
}

// Parse decodes a seed file. Unknown keys and unrecognized levels are errors;
// nothing from a file that fails to parse is applied.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		if apperr.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("policy: parse: %w", err)
	}
	for i, o := range f.Overrides {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("policy: override %d: %w", i, err)
		}
	}
	f.Checksum = checksum.Sum(data)
	return &f, nil
}

// Load reads and parses the seed file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy: read %s: %w", path, err)
	}
	return Parse(data)
}

// OverrideSetter stores overrides. *docservice.Service implements it.
type OverrideSetter interface {
	SetOverride(ctx context.Context, o permission.Override) (*permission.Override, error)
}

// Apply upserts every override in f. It keeps going after a failed entry
// and returns the number applied together with the joined errors.
func Apply(ctx context.Context, setter OverrideSetter, f *File, logger *slog.Logger) (int, error) {
	var errs []error
	applied := 0
	for _, o := range f.Overrides {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if _, err := setter.SetOverride(ctx, o); err != nil {
			logger.Warn("policy: apply failed",
				slog.String("key", o.Key().String()),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", o.Key(), err))
			continue
		}
		applied++
	}
	return applied, errors.Join(errs...)
}

// Syncer applies a seed file whenever its content changes.
type Syncer struct {
	path   string
	setter OverrideSetter
	logger *slog.Logger
	last   string
}

// NewSyncer creates a Syncer for the seed file at path.
func NewSyncer(path string, setter OverrideSetter, logger *slog.Logger) *Syncer {
	return &Syncer{path: path, setter: setter, logger: logger}
}

// Sync loads the seed file and applies it unless its content is unchanged
// since the last successful sync. It reports whether anything was applied.
func (s *Syncer) Sync(ctx context.Context) (bool, error) {
	f, err := Load(s.path)
	if err != nil {
		return false, err
	}
	if f.Checksum == s.last {
		s.logger.Debug("policy: unchanged", slog.String("path", s.path))
		return false, nil
	}
	n, err := Apply(ctx, s.setter, f, s.logger)
	if err != nil {
		return n > 0, err
	}
	s.last = f.Checksum
	s.logger.Info("policy: applied",
		slog.String("path", s.path),
		slog.Int("overrides", n))
	return true, nil
}
