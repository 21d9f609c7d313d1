/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package render substitutes named placeholder tokens in build-file and chart
// templates.
//
// Each token is written in templates as its name in braces, for example
// {BASE_IMAGE}. Render replaces only the tokens supplied in Values; any other
// brace-delimited text is left exactly as written, so partially-parameterized
// templates render without error.
package render
