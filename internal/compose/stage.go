package compose

import (
	"context"
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

// Staged is a local file read fully into memory and waiting to be sent.
// RelativePath includes the file name; for folder uploads it starts with
// the folder's own name.
type Staged struct {
	Filename     string
	MimeType     string
	RelativePath string
	Size         int64
	Data         string // base64
}

// DisplayPath is the label shown in the attachment list.
func (s Staged) DisplayPath() string {
	if s.RelativePath != "" {
		return s.RelativePath
	}
	return s.Filename
}

func (s Staged) sameEntry(o Staged) bool {
	return s.RelativePath == o.RelativePath && s.Filename == o.Filename
}

// ReadError reports a file that could not be staged.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("unable to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Merge adds batch to existing. An entry with the same (relative path,
// filename) as an existing one replaces it in place; the rest are
// appended in order. existing is not modified.
func Merge(existing, batch []Staged) []Staged {
	out := slices.Clone(existing)
	for _, add := range batch {
		idx := slices.IndexFunc(out, add.sameEntry)
		if idx >= 0 {
			out[idx] = add
			continue
		}
		out = append(out, add)
	}
	return out
}

// Remove drops the entry at index. Out-of-range indexes are ignored.
func Remove(list []Staged, index int) []Staged {
	if index < 0 || index >= len(list) {
		return list
	}
	return slices.Delete(slices.Clone(list), index, index+1)
}

// source is one file to read and the relative path to stage it under.
type source struct {
	path    string
	relPath string
}

// Stager reads files for staging. Reads of one batch run concurrently
// and the batch fails as a whole when any read fails.
type Stager struct {
	// Limit caps concurrent reads. Zero means 8.
	Limit int
}

// Stage reads every path. Directories are walked recursively and their
// files keep paths relative to the directory's parent.
func (s Stager) Stage(ctx context.Context, paths []string) ([]Staged, error) {
	var sources []source
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, &ReadError{Path: p, Err: err}
		}
		if !info.IsDir() {
			sources = append(sources, source{path: p, relPath: filepath.Base(p)})
			continue
		}
		found, err := walkFolder(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, found...)
	}
	return s.read(ctx, sources)
}

func walkFolder(dir string) ([]source, error) {
	root := filepath.Clean(dir)
	base := filepath.Base(root)

	var sources []source
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &ReadError{Path: path, Err: err}
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return &ReadError{Path: path, Err: err}
		}
		sources = append(sources, source{
			path:    path,
			relPath: filepath.ToSlash(filepath.Join(base, rel)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func (s Stager) read(ctx context.Context, sources []source) ([]Staged, error) {
	limit := s.Limit
	if limit <= 0 {
		limit = 8
	}

	out := make([]Staged, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			staged, err := readOne(src)
			if err != nil {
				return err
			}
			out[i] = staged
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func readOne(src source) (Staged, error) {
	data, err := os.ReadFile(src.path)
	if err != nil {
		return Staged{}, &ReadError{Path: src.path, Err: err}
	}
	return Staged{
		Filename:     filepath.Base(src.path),
		MimeType:     mimetype.Detect(data).String(),
		RelativePath: src.relPath,
		Size:         int64(len(data)),
		Data:         base64.StdEncoding.EncodeToString(data),
	}, nil
}
