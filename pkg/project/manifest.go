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

package project

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/NVIDIA/servicemaker/pkg/defaults"
	"github.com/NVIDIA/servicemaker/pkg/errors"
	"github.com/NVIDIA/servicemaker/pkg/version"
)

// pyProject is the subset of pyproject.toml the pipeline reads.
type pyProject struct {
	Project struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"project"`
}

// packageJSON is the subset of package.json the pipeline reads.
type packageJSON struct {
	Name    string `json:"name"`
	Version any    `json:"version"`
}

func readManifest(home, file string) ([]byte, error) {
	path := filepath.Join(home, file)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewWithContext(errors.ErrCodeManifest,
				file+" not found", map[string]any{"path": path})
		}
		return nil, errors.WrapWithContext(errors.ErrCodeManifest,
			"failed to read "+file, err, map[string]any{"path": path})
	}
	return data, nil
}

func decodePyProject(home string) (*pyProject, error) {
	data, err := readManifest(home, ScriptManifestFile)
	if err != nil {
		return nil, err
	}
	var p pyProject
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeManifest,
			"failed to parse "+ScriptManifestFile, err,
			map[string]any{"path": filepath.Join(home, ScriptManifestFile)})
	}
	return &p, nil
}

func decodePackageJSON(home string) (*packageJSON, error) {
	data, err := readManifest(home, WebManifestFile)
	if err != nil {
		return nil, err
	}
	var p packageJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeManifest,
			"failed to parse "+WebManifestFile, err,
			map[string]any{"path": filepath.Join(home, WebManifestFile)})
	}
	return &p, nil
}

// ReadPyProject reads project.name and project.version from pyproject.toml.
// Both fields are mandatory.
func ReadPyProject(home string) (Metadata, error) {
	p, err := decodePyProject(home)
	if err != nil {
		return Metadata{}, err
	}
	if p.Project.Name == "" {
		return Metadata{}, errors.NewWithContext(errors.ErrCodeManifest,
			"missing 'project.name' in "+ScriptManifestFile, map[string]any{"home": home})
	}
	if p.Project.Version == "" {
		return Metadata{}, errors.NewWithContext(errors.ErrCodeManifest,
			"missing 'project.version' in "+ScriptManifestFile, map[string]any{"home": home})
	}
	meta := Metadata{Name: p.Project.Name, Version: p.Project.Version}
	warnVersion(meta)
	return meta, nil
}

// ReadPackageJSON reads name and version from package.json.
// Name is mandatory; an absent or non-string version becomes 1.0.0.
func ReadPackageJSON(home string) (Metadata, error) {
	p, err := decodePackageJSON(home)
	if err != nil {
		return Metadata{}, err
	}
	if p.Name == "" {
		return Metadata{}, errors.NewWithContext(errors.ErrCodeManifest,
			"missing 'name' in "+WebManifestFile, map[string]any{"home": home})
	}
	meta := Metadata{Name: p.Name}
	if v, ok := p.Version.(string); ok {
		meta.Version = v
	}
	if meta.Version == "" {
		meta.Version = defaults.ManifestVersion
	}
	warnVersion(meta)
	return meta, nil
}

// chart tooling rejects non-semantic versions at lint time
func warnVersion(meta Metadata) {
	if !version.IsSemantic(meta.Version) {
		slog.Warn("manifest version is not a semantic version",
			"name", meta.Name, "version", meta.Version)
	}
}

// FindSingleScript returns the name of the only *.py file at the root of home,
// or "" when there are none or more than one.
func FindSingleScript(home string) string {
	entries, err := os.ReadDir(home)
	if err != nil {
		return ""
	}
	var found []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".py") {
			continue
		}
		found = append(found, e.Name())
	}
	if len(found) != 1 {
		return ""
	}
	return found[0]
}

func exists(home, file string) bool {
	info, err := os.Stat(filepath.Join(home, file))
	return err == nil && !info.IsDir()
}
