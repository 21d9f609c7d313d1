/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package oci

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"

	apperrors "github.com/NVIDIA/servicemaker/pkg/errors"
)

func TestStripProtocol(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "https prefix", input: "https://ghcr.io", expected: "ghcr.io"},
		{name: "http prefix", input: "http://localhost:5000", expected: "localhost:5000"},
		{name: "no prefix", input: "registry.example.com", expected: "registry.example.com"},
		{name: "https with path", input: "https://ghcr.io/acme", expected: "ghcr.io/acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripProtocol(tt.input); got != tt.expected {
				t.Errorf("stripProtocol(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func writeArchive(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "svc-2.0.0.tgz")
	if err := os.WriteFile(path, []byte("not really gzip"), 0o644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
	return path
}

func testOptions(t *testing.T) ChartPushOptions {
	t.Helper()
	reg, err := ParseReference("oci://localhost:5000/charts")
	if err != nil {
		t.Fatalf("ParseReference() error = %v", err)
	}
	return ChartPushOptions{
		Archive:  writeArchive(t),
		Registry: reg,
		Name:     "svc",
		Version:  "2.0.0",
	}
}

func TestChartPushOptionsTarget(t *testing.T) {
	opts := testOptions(t)
	if got := opts.Target().String(); got != "oci://localhost:5000/charts/svc:2.0.0" {
		t.Errorf("Target() = %q", got)
	}
}

func TestPushChartValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ChartPushOptions)
		code   apperrors.ErrorCode
	}{
		{
			name:   "missing registry",
			mutate: func(o *ChartPushOptions) { o.Registry = nil },
			code:   apperrors.ErrCodeInvalidRequest,
		},
		{
			name:   "missing version",
			mutate: func(o *ChartPushOptions) { o.Version = "" },
			code:   apperrors.ErrCodeInvalidRequest,
		},
		{
			name:   "missing archive",
			mutate: func(o *ChartPushOptions) { o.Archive = filepath.Join(t.TempDir(), "missing.tgz") },
			code:   apperrors.ErrCodeArtifactMissing,
		},
		{
			name:   "invalid chart name",
			mutate: func(o *ChartPushOptions) { o.Name = "Bad Name" },
			code:   apperrors.ErrCodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t)
			tt.mutate(&opts)
			_, err := PushChart(context.Background(), opts)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !apperrors.IsCode(err, tt.code) {
				t.Errorf("expected code %s, got %v", tt.code, err)
			}
		})
	}
}

func TestPushChartToStore(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t)
	dst := memory.New()

	res, err := pushChart(ctx, opts, dst)
	if err != nil {
		t.Fatalf("pushChart() error = %v", err)
	}
	if res.Reference != "oci://localhost:5000/charts/svc:2.0.0" {
		t.Errorf("Reference = %q", res.Reference)
	}

	desc, err := dst.Resolve(ctx, "2.0.0")
	if err != nil {
		t.Fatalf("tag 2.0.0 not found in destination: %v", err)
	}
	if desc.Digest.String() != res.Digest {
		t.Errorf("digest mismatch: store %s, result %s", desc.Digest, res.Digest)
	}

	raw, err := content.FetchAll(ctx, dst, desc)
	if err != nil {
		t.Fatalf("failed to fetch manifest: %v", err)
	}
	var manifest ociv1.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		t.Fatalf("failed to decode manifest: %v", err)
	}

	if manifest.Config.MediaType != ChartConfigMediaType {
		t.Errorf("config media type = %q", manifest.Config.MediaType)
	}
	if len(manifest.Layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(manifest.Layers))
	}
	layer := manifest.Layers[0]
	if layer.MediaType != ChartLayerMediaType {
		t.Errorf("layer media type = %q", layer.MediaType)
	}
	if layer.Annotations[ociv1.AnnotationTitle] != "svc-2.0.0.tgz" {
		t.Errorf("layer title = %q", layer.Annotations[ociv1.AnnotationTitle])
	}
	if manifest.Annotations[ociv1.AnnotationVersion] != "2.0.0" {
		t.Errorf("manifest version annotation = %q", manifest.Annotations[ociv1.AnnotationVersion])
	}

	cfgRaw, err := content.FetchAll(ctx, dst, manifest.Config)
	if err != nil {
		t.Fatalf("failed to fetch config: %v", err)
	}
	var cfg chartConfig
	if err := json.Unmarshal(cfgRaw, &cfg); err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if cfg.Name != "svc" || cfg.Version != "2.0.0" || cfg.APIVersion != ChartAPIVersion {
		t.Errorf("unexpected chart config: %+v", cfg)
	}

	layerRaw, err := content.FetchAll(ctx, dst, layer)
	if err != nil {
		t.Fatalf("failed to fetch layer: %v", err)
	}
	if string(layerRaw) != "not really gzip" {
		t.Errorf("layer content altered: %q", layerRaw)
	}
}
