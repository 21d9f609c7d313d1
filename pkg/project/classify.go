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
	"fmt"
	"strings"

	"github.com/NVIDIA/servicemaker/pkg/errors"
)

// kinds in classification precedence order.
var kinds = []Kind{
	scriptKind{},
	multiServiceKind{},
	singleServiceKind{},
	webKind{},
}

// Classify returns the first kind whose marker files are present in home.
func Classify(home string) (Kind, error) {
	for _, k := range kinds {
		if k.Matches(home) {
			return k, nil
		}
	}
	return nil, errors.NewWithContext(errors.ErrCodeClassification,
		fmt.Sprintf("could not detect project type: expected %s or %s", ScriptManifestFile, WebManifestFile),
		map[string]any{"home": home})
}

// Lookup returns the kind registered for t.
func Lookup(t Type) (Kind, error) {
	for _, k := range kinds {
		if k.Type() == t {
			return k, nil
		}
	}
	return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("unsupported project type %q (must be one of %s)", t, strings.Join(TypeNames(), ", ")),
		map[string]any{"type": string(t)})
}

// Detect returns the kind named by override, or classifies home when override is empty.
func Detect(home, override string) (Kind, error) {
	if override != "" {
		return Lookup(Type(override))
	}
	return Classify(home)
}

// TypeNames returns every supported type tag.
func TypeNames() []string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.Type().String())
	}
	return names
}
