// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package checksum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NVIDIA/servicemaker/pkg/errors"
)

// ChecksumFileName is the standard name for checksum files.
const ChecksumFileName = "checksums.txt"

// Entry is one checksummed file.
type Entry struct {
	Path   string `json:"path" yaml:"path"`
	SHA256 string `json:"sha256" yaml:"sha256"`
}

// Generate writes checksums.txt into dir for files and returns the entries.
// Paths are written relative to dir, deduplicated, and sorted.
func Generate(ctx context.Context, dir string, files []string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	seen := make(map[string]bool, len(files))
	entries := make([]Entry, 0, len(files))
	for _, file := range files {
		relPath, err := filepath.Rel(dir, file)
		if err != nil {
			// fall back to the absolute path
			relPath = file
		}
		relPath = filepath.ToSlash(relPath)
		if seen[relPath] {
			continue
		}
		seen[relPath] = true

		sum, err := Sum(file)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Path: relPath, SHA256: sum})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %s\n", e.SHA256, e.Path)
	}

	checksumPath := FilePath(dir)
	if err := os.WriteFile(checksumPath, []byte(b.String()), 0o644); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeWorkspace, "failed to write checksums", err,
			map[string]any{"path": checksumPath})
	}

	slog.Debug("checksums generated",
		"file_count", len(entries),
		"path", checksumPath,
	)
	return entries, nil
}

// Sum returns the hex sha256 digest of file.
func Sum(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeWorkspace, "failed to open file for checksum", err,
			map[string]any{"path": file})
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeWorkspace, "failed to read file for checksum", err,
			map[string]any{"path": file})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FilePath returns the full path to checksums.txt in dir.
func FilePath(dir string) string {
	return filepath.Join(dir, ChecksumFileName)
}
