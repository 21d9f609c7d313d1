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

package oci

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/NVIDIA/servicemaker/pkg/errors"
)

// URIScheme is the URI scheme for chart registries (e.g., "oci://ghcr.io/org/charts").
const URIScheme = "oci://"

// Reference is a parsed OCI registry location.
type Reference struct {
	// Registry is the registry host (e.g., "ghcr.io", "localhost:5000").
	Registry string
	// Repository is the repository path (e.g., "acme/charts").
	Repository string
	// Tag is the tag; empty until WithTag is applied.
	Tag string
}

// ParseReference parses an oci://host/repository URI.
// The host must be explicit and the URI must not carry a tag or digest,
// since charts are always tagged with their own version.
func ParseReference(target string) (*Reference, error) {
	if !strings.HasPrefix(target, URIScheme) {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"chart registry must use the oci:// scheme", map[string]any{"registry": target})
	}

	trimmed := strings.TrimSuffix(strings.TrimPrefix(target, URIScheme), "/")
	host, path, ok := strings.Cut(trimmed, "/")
	if !ok || host == "" || path == "" {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"chart registry must name both a host and a repository", map[string]any{"registry": target})
	}

	ref, err := reference.ParseNormalizedNamed(trimmed)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid OCI reference", err)
	}
	if _, tagged := ref.(reference.Tagged); tagged {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"chart registry must not include a tag", map[string]any{"registry": target})
	}
	if _, digested := ref.(reference.Digested); digested {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"chart registry must not include a digest", map[string]any{"registry": target})
	}

	registry := reference.Domain(ref)
	repository := reference.Path(ref)

	if err := ValidateRegistryReference(registry, repository); err != nil {
		return nil, err
	}

	return &Reference{
		Registry:   registry,
		Repository: repository,
	}, nil
}

// ValidateRegistryReference checks that registry and repository form a
// valid image name.
func ValidateRegistryReference(registry, repository string) error {
	if registry == "" {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "registry is required")
	}
	if repository == "" {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "repository is required")
	}
	name := fmt.Sprintf("%s/%s", stripProtocol(registry), repository)
	if _, err := reference.ParseNormalizedNamed(name); err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeInvalidRequest,
			"invalid registry reference", err, map[string]any{"reference": name})
	}
	return nil
}

// String returns "oci://registry/repository[:tag]".
func (r *Reference) String() string {
	return URIScheme + r.ImageReference()
}

// ImageReference returns the reference without the oci:// scheme.
func (r *Reference) ImageReference() string {
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// WithTag returns a copy of the reference with the specified tag.
func (r *Reference) WithTag(tag string) *Reference {
	c := *r
	c.Tag = tag
	return &c
}

// Child returns a copy of the reference with name appended to the repository.
func (r *Reference) Child(name string) *Reference {
	c := *r
	c.Repository = strings.TrimSuffix(r.Repository, "/") + "/" + name
	return &c
}
