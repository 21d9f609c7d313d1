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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NVIDIA/servicemaker/pkg/errors"
)

// sha256 of "hello"
const helloSum = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"Dockerfile":        "hello",
		"scripts/zipper.sh": "#!/bin/sh\n",
		"svc/Chart.yaml":    "name: svc\n",
	}
	var paths []string
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	// duplicates are written once
	paths = append(paths, filepath.Join(dir, "Dockerfile"))

	entries, err := Generate(context.Background(), dir, paths)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantOrder := []string{"Dockerfile", "scripts/zipper.sh", "svc/Chart.yaml"}
	for i, e := range entries {
		if e.Path != wantOrder[i] {
			t.Errorf("entry %d path = %s, want %s", i, e.Path, wantOrder[i])
		}
	}
	if entries[0].SHA256 != helloSum {
		t.Errorf("Dockerfile sum = %s, want %s", entries[0].SHA256, helloSum)
	}

	data, err := os.ReadFile(FilePath(dir))
	if err != nil {
		t.Fatalf("failed to read checksums: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != helloSum+"  Dockerfile" {
		t.Errorf("unexpected first line %q", lines[0])
	}
}

func TestGenerateMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Generate(context.Background(), dir, []string{filepath.Join(dir, "nope")})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.IsCode(err, errors.ErrCodeWorkspace) {
		t.Errorf("expected WORKSPACE code, got %v", err)
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Generate(ctx, t.TempDir(), nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestFilePath(t *testing.T) {
	if got := FilePath("/ws"); got != filepath.Join("/ws", "checksums.txt") {
		t.Errorf("FilePath() = %s", got)
	}
}
