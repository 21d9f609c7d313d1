/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/distribution/reference"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/NVIDIA/servicemaker/pkg/config"
	"github.com/NVIDIA/servicemaker/pkg/project"
)

// packageCmdOptions holds the raw flag values of the package command.
// Zero values mean "not given".
type packageCmdOptions struct {
	name            string
	projectHome     string
	baseImage       string
	port            int
	imageName       string
	push            bool
	entrypoint      string
	snapshot        bool
	mountPath       string
	projectType     string
	workspaceRoot   string
	containerEngine string
	chartEngine     string
	chartRegistry   string
	plainHTTP       bool
	insecureTLS     bool
	noInput         bool
}

// resolve fills unset options from the project and the prompter and returns
// the packaging request.
//
// Resolution order:
//   - project home: flag, then prompt (default ".")
//   - name: flag, then manifest name (directory name for single-service projects), then prompt
//   - entrypoint (script projects): flag, then the only *.py file at the root, then prompt
//   - mount path (single-service projects): flag, then prompt with default /<directory name>
//   - port and image name: flag, then prompt
func resolve(opts packageCmdOptions, p Prompter) (*config.Request, error) {
	home := opts.projectHome
	if home == "" {
		answer, err := p.Ask(Question{
			Flag:    "project-home",
			Title:   "Project directory",
			Default: ".",
		})
		if err != nil {
			return nil, err
		}
		home = answer
	}

	kind, err := project.Detect(home, opts.projectType)
	if err != nil {
		return nil, err
	}
	slog.Debug("resolving request", "project_home", home, "type", kind.Type().String())

	name := opts.name
	if name == "" {
		name = kind.InferName(home)
		if name != "" {
			slog.Info("project name inferred", "name", name)
		}
	}
	if name == "" {
		if name, err = p.Ask(Question{
			Flag:  "name",
			Title: "Project name",
		}); err != nil {
			return nil, err
		}
	}

	entrypoint := opts.entrypoint
	if kind.NeedsEntrypoint() && entrypoint == "" {
		entrypoint = project.FindSingleScript(home)
		if entrypoint != "" {
			slog.Info("entrypoint inferred", "entrypoint", entrypoint)
		} else if entrypoint, err = p.Ask(Question{
			Flag:        "entrypoint",
			Title:       "Entrypoint script",
			Description: "Python file started by the container, relative to the project directory",
		}); err != nil {
			return nil, err
		}
	}

	mountPath := opts.mountPath
	if kind.NeedsMountPath() && mountPath == "" {
		if mountPath, err = p.Ask(Question{
			Flag:    "mount-path",
			Title:   "Mount path",
			Default: DefaultMountPath(home),
		}); err != nil {
			return nil, err
		}
	}

	port := opts.port
	if port == 0 {
		answer, askErr := p.Ask(Question{
			Flag:     "port",
			Title:    "Service port",
			Validate: validatePort,
		})
		if askErr != nil {
			return nil, askErr
		}
		// validated by the prompt; Request.Validate reports anything else
		port, _ = strconv.Atoi(answer)
	}

	imageName := opts.imageName
	if imageName == "" {
		if imageName, err = p.Ask(Question{
			Flag:     "image-name",
			Title:    "Image name",
			Validate: validateImageName,
		}); err != nil {
			return nil, err
		}
	}

	options := []config.Option{
		config.WithName(name),
		config.WithProjectHome(home),
		config.WithPort(port),
		config.WithImageName(imageName),
		config.WithPush(opts.push),
		config.WithEntrypoint(entrypoint),
		config.WithSnapshot(opts.snapshot),
		config.WithMountPath(mountPath),
		config.WithProjectType(string(kind.Type())),
		config.WithChartRegistry(opts.chartRegistry),
		config.WithPlainHTTP(opts.plainHTTP),
		config.WithInsecureTLS(opts.insecureTLS),
	}
	if opts.baseImage != "" {
		options = append(options, config.WithBaseImage(opts.baseImage))
	}
	if opts.workspaceRoot != "" {
		options = append(options, config.WithWorkspaceRoot(opts.workspaceRoot))
	}
	if opts.containerEngine != "" {
		options = append(options, config.WithContainerEngine(opts.containerEngine))
	}
	if opts.chartEngine != "" {
		options = append(options, config.WithChartEngine(opts.chartEngine))
	}

	req := config.NewRequest(options...)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// DefaultMountPath returns "/" followed by the lowercased project directory name.
func DefaultMountPath(home string) string {
	abs, err := filepath.Abs(home)
	if err != nil {
		abs = home
	}
	return "/" + strings.ToLower(filepath.Base(abs))
}

func validatePort(s string) error {
	port, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	if msgs := validation.IsValidPortNum(port); len(msgs) > 0 {
		return fmt.Errorf("invalid port: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func validateImageName(s string) error {
	if _, err := reference.ParseNormalizedNamed(s); err != nil {
		return fmt.Errorf("invalid image name: %w", err)
	}
	return nil
}
