/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package workspace stages a project into an isolated directory that the
// container engine uses as its build context.
//
// A workspace is named servicemaker-<name>-<pid> under a root directory. An
// existing directory with the same name is removed before the workspace is
// created. Staging copies the project tree without dependency caches
// (.venv, node_modules), writes the helper scripts to scripts/ with mode
// 0755 and, for wrapped projects, generates wrapper/services.json.
//
// The workspace is never deleted by this package or by the pipeline. It is
// left in place after every run, successful or not, as the record of what
// was built.
package workspace
