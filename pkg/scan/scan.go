// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scan collects a point-in-time metadata snapshot of a directory
// tree. The snapshot is read-only; planning and mutation happen elsewhere,
// against this frozen view.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// FileType classifies a directory entry.
type FileType int

const (
	TypeFile FileType = iota
	TypeFolder
	TypeSymlink
	TypeOther
)

func (t FileType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeFolder:
		return "folder"
	case TypeSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// ParseFileType parses a normalized type name.
func ParseFileType(s string) (FileType, bool) {
	switch strings.ToLower(s) {
	case "file":
		return TypeFile, true
	case "folder":
		return TypeFolder, true
	case "symlink":
		return TypeSymlink, true
	case "other":
		return TypeOther, true
	default:
		return 0, false
	}
}

// FileMeta is one snapshot entry.
type FileMeta struct {
	Path       string // absolute or root-relative, as scanned
	Name       string
	Type       FileType
	Size       int64
	Depth      int // 1 for immediate children of the scan root
	ModTime    time.Time
	AccessTime time.Time
}

// Options controls a snapshot.
type Options struct {
	// Recursive walks the whole tree; otherwise only immediate children.
	Recursive bool

	// Workers bounds the parallel metadata readers for recursive scans.
	// Zero means a small default.
	Workers int
}

const defaultWorkers = 8

// Snapshot reads metadata for the entries under root. The traversal itself
// is read-only; with Recursive set, metadata reads fan out over a bounded
// worker group.
func Snapshot(ctx context.Context, root string, opts Options) ([]FileMeta, error) {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Errorf("reading scan root: %w", err)
	}
	if !info.IsDir() {
		meta, err := readMeta(root, 0)
		if err != nil {
			return nil, err
		}
		return []FileMeta{meta}, nil
	}

	if !opts.Recursive {
		return snapshotShallow(root)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var mu sync.Mutex
	var metas []FileMeta

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %s: %w", path, err)
		}
		if path == root {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		depth := relativeDepth(root, path)
		g.Go(func() error {
			meta, err := readMeta(path, depth)
			if err != nil {
				return err
			}
			mu.Lock()
			metas = append(metas, meta)
			mu.Unlock()
			return nil
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].Path < metas[j].Path })

	logger.Debug().Str("root", root).Int("entries", len(metas)).Msg("snapshot complete")
	return metas, nil
}

func snapshotShallow(root string) ([]FileMeta, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Errorf("reading directory %s: %w", root, err)
	}

	metas := make([]FileMeta, 0, len(entries))
	for _, entry := range entries {
		meta, err := readMeta(filepath.Join(root, entry.Name()), 1)
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].Path < metas[j].Path })
	return metas, nil
}

func readMeta(path string, depth int) (FileMeta, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return FileMeta{}, errors.Errorf("reading metadata for %s: %w", path, err)
	}

	meta := FileMeta{
		Path:       path,
		Name:       info.Name(),
		Size:       info.Size(),
		Depth:      depth,
		ModTime:    info.ModTime(),
		AccessTime: accessTime(info),
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		meta.Type = TypeSymlink
	case info.IsDir():
		meta.Type = TypeFolder
	case info.Mode().IsRegular():
		meta.Type = TypeFile
	default:
		meta.Type = TypeOther
	}

	return meta, nil
}

func relativeDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 1
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
