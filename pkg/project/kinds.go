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
	_ "embed"
	"path/filepath"
	"strconv"

	"github.com/NVIDIA/servicemaker/pkg/defaults"
	"github.com/NVIDIA/servicemaker/pkg/render"
)

//go:embed templates/Dockerfile.python.tmpl
var pythonBuildTemplate string

//go:embed templates/Dockerfile.nodejs.tmpl
var nodeBuildTemplate string

// scriptKind is a Python project described by pyproject.toml.
type scriptKind struct{}

func (scriptKind) Type() Type { return TypeScript }

func (scriptKind) Matches(home string) bool {
	return exists(home, ScriptManifestFile)
}

func (scriptKind) ReadMetadata(home string) (Metadata, error) {
	return ReadPyProject(home)
}

func (scriptKind) InferName(home string) string {
	p, err := decodePyProject(home)
	if err != nil {
		return ""
	}
	return p.Project.Name
}

func (scriptKind) Layout() Layout { return LayoutFlat }

func (scriptKind) BuildTemplate() string { return pythonBuildTemplate }

func (scriptKind) BuildValues(in BuildInput) render.Values {
	return render.Values{
		render.TokenBaseImage:     in.BaseImage,
		render.TokenProjectDir:    in.ProjectDir,
		render.TokenPort:          strconv.Itoa(in.Port),
		render.TokenEntrypoint:    in.Entrypoint,
		render.TokenPythonVersion: render.RuntimeVersion(in.BaseImage),
	}
}

func (scriptKind) DefaultBaseImage() string { return defaults.PythonBaseImage }

func (scriptKind) NeedsEntrypoint() bool { return true }

func (scriptKind) NeedsMountPath() bool { return false }

// nodeKind holds the behavior shared by every package.json based kind.
type nodeKind struct{}

func (nodeKind) ReadMetadata(home string) (Metadata, error) {
	return ReadPackageJSON(home)
}

func (nodeKind) BuildTemplate() string { return nodeBuildTemplate }

func (nodeKind) BuildValues(in BuildInput) render.Values {
	return render.Values{
		render.TokenBaseImage:  in.BaseImage,
		render.TokenProjectDir: in.ProjectDir,
		render.TokenPort:       strconv.Itoa(in.Port),
	}
}

func (nodeKind) DefaultBaseImage() string { return defaults.NodeBaseImage }

func (nodeKind) NeedsEntrypoint() bool { return false }

func packageName(home string) string {
	p, err := decodePackageJSON(home)
	if err != nil {
		return ""
	}
	return p.Name
}

// packageNameOrDir falls back to the directory name when package.json has no name.
func packageNameOrDir(home string) string {
	if name := packageName(home); name != "" {
		return name
	}
	return filepath.Base(filepath.Clean(home))
}

// multiServiceKind is a services.json descriptor with its own package.json.
type multiServiceKind struct{ nodeKind }

func (multiServiceKind) Type() Type { return TypeMultiService }

func (multiServiceKind) Matches(home string) bool {
	return exists(home, WebManifestFile) && exists(home, ServiceDescriptorFile)
}

func (multiServiceKind) InferName(home string) string { return packageName(home) }

func (multiServiceKind) Layout() Layout { return LayoutFlat }

func (multiServiceKind) NeedsMountPath() bool { return false }

// singleServiceKind is one service directory that must be wrapped.
type singleServiceKind struct{ nodeKind }

func (singleServiceKind) Type() Type { return TypeSingleService }

func (singleServiceKind) Matches(home string) bool {
	return exists(home, WebManifestFile) && !exists(home, ServiceDescriptorFile)
}

func (singleServiceKind) InferName(home string) string { return packageNameOrDir(home) }

func (singleServiceKind) Layout() Layout { return LayoutWrapper }

func (singleServiceKind) NeedsMountPath() bool { return true }

// webKind is a plain Node project; it has no marker row and is only selected explicitly.
type webKind struct{ nodeKind }

func (webKind) Type() Type { return TypeWeb }

func (webKind) Matches(string) bool { return false }

func (webKind) InferName(home string) string { return packageNameOrDir(home) }

func (webKind) Layout() Layout { return LayoutFlat }

func (webKind) NeedsMountPath() bool { return false }
