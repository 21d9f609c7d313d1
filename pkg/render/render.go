/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package render

import (
	"sort"
	"strings"

	"github.com/NVIDIA/servicemaker/pkg/defaults"
)

// Token is a placeholder name without its surrounding braces.
type Token string

// Build-file tokens.
const (
	TokenBaseImage     Token = "BASE_IMAGE"
	TokenProjectDir    Token = "PROJECT_DIR"
	TokenPort          Token = "PORT"
	TokenEntrypoint    Token = "ENTRYPOINT"
	TokenPythonVersion Token = "PYTHON_VERSION"
)

// Chart tokens. TokenPort is shared with the build-file vocabulary.
const (
	TokenServiceName Token = "SERVICE_NAME"
	TokenVersion     Token = "VERSION"
	TokenImageName   Token = "IMAGE_NAME"
)

// Placeholder returns the literal text the token occupies in a template.
func (t Token) Placeholder() string {
	return "{" + string(t) + "}"
}

// BuildFileVocabulary lists the tokens recognized in build-file templates.
var BuildFileVocabulary = []Token{
	TokenBaseImage,
	TokenProjectDir,
	TokenPort,
	TokenEntrypoint,
	TokenPythonVersion,
}

// ChartVocabulary lists the tokens recognized in chart templates.
var ChartVocabulary = []Token{
	TokenServiceName,
	TokenVersion,
	TokenPort,
	TokenImageName,
}

// Values maps tokens to their resolved text.
type Values map[Token]string

// Restrict returns a copy of v holding only the tokens in vocabulary.
func (v Values) Restrict(vocabulary []Token) Values {
	out := make(Values, len(vocabulary))
	for _, t := range vocabulary {
		if val, ok := v[t]; ok {
			out[t] = val
		}
	}
	return out
}

// Render replaces every occurrence of each token in values with its value.
// Substitution is a single pass, so values containing placeholder text are
// not expanded again. Tokens absent from values are left untouched.
func Render(text string, values Values) string {
	if len(values) == 0 {
		return text
	}

	// stable ordering keeps replacer construction deterministic
	tokens := make([]string, 0, len(values))
	for t := range values {
		tokens = append(tokens, string(t))
	}
	sort.Strings(tokens)

	pairs := make([]string, 0, len(tokens)*2)
	for _, t := range tokens {
		pairs = append(pairs, Token(t).Placeholder(), values[Token(t)])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Unresolved returns the tokens from vocabulary still present in text.
func Unresolved(text string, vocabulary []Token) []Token {
	var out []Token
	for _, t := range vocabulary {
		if strings.Contains(text, t.Placeholder()) {
			out = append(out, t)
		}
	}
	return out
}

// RuntimeVersion derives the language runtime version encoded in a base image
// name. The digit run immediately after the first "py" marker becomes
// "3.<digits>", so "arangodb/py13base" yields "3.13". Without a marker or
// without digits after it the default runtime version is returned.
func RuntimeVersion(baseImage string) string {
	idx := strings.Index(baseImage, defaults.RuntimeVersionMarker)
	if idx < 0 {
		return defaults.RuntimeVersion
	}
	rest := baseImage[idx+len(defaults.RuntimeVersionMarker):]

	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return defaults.RuntimeVersion
	}
	return "3." + rest[:end]
}
