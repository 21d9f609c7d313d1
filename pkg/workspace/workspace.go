/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package workspace

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/otiai10/copy"

	"github.com/NVIDIA/servicemaker/pkg/defaults"
	"github.com/NVIDIA/servicemaker/pkg/errors"
	"github.com/NVIDIA/servicemaker/pkg/project"
)

//go:embed scripts/*.sh
var scriptFS embed.FS

// ScriptMode is the permission applied to helper scripts.
const ScriptMode os.FileMode = 0o755

// Workspace is the staging directory for one run.
// Postcondition: the directory outlives the run and is never removed here.
type Workspace struct {
	// Dir is the absolute workspace path.
	Dir string

	// ProjectDir is the staged project directory name relative to Dir.
	ProjectDir string

	// Files lists generated files, absolute, in write order.
	Files []string
}

// serviceEntry is one element of a synthesized services.json.
type serviceEntry struct {
	Mount    string `json:"mount"`
	BasePath string `json:"basePath"`
}

// Name returns the deterministic workspace directory name.
func Name(projectName string, pid int) string {
	return fmt.Sprintf("%s-%s-%d", defaults.WorkspacePrefix, projectName, pid)
}

// Create makes a fresh workspace named after projectName and pid under root.
// A pre-existing directory with the same name is removed first.
func Create(root, projectName string, pid int) (*Workspace, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeWorkspace, "failed to resolve workspace root", err)
	}
	dir := filepath.Join(absRoot, Name(projectName, pid))
	if filepath.Dir(dir) != filepath.Clean(absRoot) {
		return nil, errors.NewWithContext(errors.ErrCodeWorkspace,
			"workspace must be a direct child of the workspace root",
			map[string]any{"root": absRoot, "name": projectName})
	}

	if _, statErr := os.Stat(dir); statErr == nil {
		slog.Warn("removing existing workspace", "path", dir)
		if err := os.RemoveAll(dir); err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeWorkspace,
				"failed to remove existing workspace", err, map[string]any{"path": dir})
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeWorkspace,
			"failed to create workspace", err, map[string]any{"path": dir})
	}

	slog.Debug("workspace created", "path", dir)
	return &Workspace{Dir: dir}, nil
}

// Path joins elem onto the workspace directory.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.Dir}, elem...)...)
}

// Stage copies the project at home into the workspace using layout.
// mountPath is only used by project.LayoutWrapper.
func (w *Workspace) Stage(home string, layout project.Layout, mountPath string) error {
	absHome, err := filepath.Abs(home)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWorkspace, "failed to resolve project home", err)
	}
	dirName := filepath.Base(absHome)

	switch layout {
	case project.LayoutWrapper:
		return w.stageWrapper(absHome, dirName, mountPath)
	default:
		if err := w.copyTree(absHome, w.Path(dirName)); err != nil {
			return err
		}
		w.ProjectDir = dirName
	}

	slog.Debug("project staged",
		"source", absHome,
		"project_dir", w.ProjectDir,
		"layout", layout.String())
	return nil
}

func (w *Workspace) stageWrapper(home, dirName, mountPath string) error {
	if mountPath == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "mount path is required for wrapped projects")
	}

	wrapper := w.Path(defaults.WrapperDirName)
	if err := w.copyTree(home, filepath.Join(wrapper, dirName)); err != nil {
		return err
	}

	// dependency installation runs at the wrapper root
	manifest := filepath.Join(wrapper, dirName, project.WebManifestFile)
	if _, err := os.Stat(manifest); err == nil {
		data, readErr := os.ReadFile(manifest)
		if readErr != nil {
			return errors.Wrap(errors.ErrCodeWorkspace, "failed to read service manifest", readErr)
		}
		if err := w.WriteFile(filepath.Join(wrapper, project.WebManifestFile), data, 0o644); err != nil {
			return err
		}
	}

	descriptor, err := ServicesJSON(mountPath, dirName)
	if err != nil {
		return err
	}
	if err := w.WriteFile(filepath.Join(wrapper, project.ServiceDescriptorFile), descriptor, 0o644); err != nil {
		return err
	}

	w.ProjectDir = defaults.WrapperDirName
	slog.Debug("wrapper staged", "service", dirName, "mount", mountPath)
	return nil
}

// ServicesJSON renders a descriptor listing one service.
func ServicesJSON(mountPath, basePath string) ([]byte, error) {
	data, err := json.MarshalIndent([]serviceEntry{{Mount: mountPath, BasePath: basePath}}, "", "    ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to encode service descriptor", err)
	}
	return append(data, '\n'), nil
}

// copyTree copies src to dst, skipping excluded directory names at any depth
// and the workspace itself when it lives inside src.
func (w *Workspace) copyTree(src, dst string) error {
	opts := copy.Options{
		Skip: func(info os.FileInfo, srcPath, _ string) (bool, error) {
			if !info.IsDir() {
				return false, nil
			}
			if slices.Contains(defaults.ExcludedDirs, info.Name()) {
				slog.Debug("skipping excluded directory", "path", srcPath)
				return true, nil
			}
			return srcPath == w.Dir, nil
		},
	}
	if err := copy.Copy(src, dst, opts); err != nil {
		return errors.WrapWithContext(errors.ErrCodeWorkspace,
			"failed to copy project", err, map[string]any{"source": src, "destination": dst})
	}
	return nil
}

// WriteScripts materializes the helper scripts under scripts/ with ScriptMode.
func (w *Workspace) WriteScripts() error {
	dir := w.Path(defaults.ScriptsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeWorkspace, "failed to create scripts directory", err)
	}

	names := ScriptNames()
	if len(names) == 0 {
		return errors.New(errors.ErrCodeInternal, "no embedded helper scripts")
	}

	for _, name := range names {
		data, err := scriptFS.ReadFile(path.Join("scripts", name))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to read embedded script "+name, err)
		}
		target := filepath.Join(dir, name)
		if err := w.WriteFile(target, data, ScriptMode); err != nil {
			return err
		}
		// WriteFile permissions are subject to umask
		if err := os.Chmod(target, ScriptMode); err != nil {
			return errors.WrapWithContext(errors.ErrCodeWorkspace,
				"failed to make script executable", err, map[string]any{"path": target})
		}
	}

	slog.Debug("helper scripts written", "count", len(names), "path", dir)
	return nil
}

// ScriptNames returns the embedded helper script names in lexical order.
func ScriptNames() []string {
	entries, err := scriptFS.ReadDir("scripts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// WriteBuildFile writes the rendered build file to the workspace root.
func (w *Workspace) WriteBuildFile(content string) (string, error) {
	target := w.Path(defaults.BuildFileName)
	if err := w.WriteFile(target, []byte(content), 0o644); err != nil {
		return "", err
	}
	return target, nil
}

// WriteFile writes content to path and records it as a generated file.
func (w *Workspace) WriteFile(file string, content []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return errors.WrapWithContext(errors.ErrCodeWorkspace,
			"failed to create directory", err, map[string]any{"path": filepath.Dir(file)})
	}
	if err := os.WriteFile(file, content, perm); err != nil {
		return errors.WrapWithContext(errors.ErrCodeWorkspace,
			"failed to write file", err, map[string]any{"path": file})
	}
	w.Files = append(w.Files, file)

	slog.Debug("file written",
		"path", file,
		"size_bytes", len(content),
		"permissions", perm)
	return nil
}

// AddFile records an externally produced file as a workspace artifact.
func (w *Workspace) AddFile(file string) {
	w.Files = append(w.Files, file)
}
