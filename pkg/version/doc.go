// Package version parses the release version declared in a service manifest.
//
// Chart tooling requires a strict three-component semantic version. Manifests
// in the wild often declare shorter forms such as "1" or "1.2", or carry
// pre-release and build suffixes. ParseVersion accepts all of these and
// records the precision so callers can warn before the chart engine rejects
// the version outright.
//
//	v, err := version.ParseVersion("2.1.0-rc.1")
//	if err != nil || !v.IsSemantic() {
//		slog.Warn("version is not semantic", "version", raw)
//	}
package version
