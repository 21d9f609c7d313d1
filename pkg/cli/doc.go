// Package cli implements the command-line interface of servicemaker.
//
// # Overview
//
// servicemaker packages a Python or Node.js project as a container image and
// a Helm chart. It drives a docker-compatible engine and the Helm CLI as
// external commands and keeps every intermediate file in a workspace
// directory.
//
// # Commands
//
// package - Build the image and chart for a project:
//
//	servicemaker package --project-home ./svc --port 8080 --image-name ghcr.io/acme/svc:2.0.0
//
// Values that are not given as flags are inferred where possible (project
// name from the manifest, entrypoint from the only *.py file) and otherwise
// prompted for. With --no-input, or when stdin is not a terminal, a missing
// required value is an error and defaulted values (mount path) are accepted.
//
// # Global Flags
//
//	--log-level    Log level: debug, info, warn, error (default: info)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Environment Variables
//
//	LOG_LEVEL             Set logging verbosity (debug, info, warn, error)
//	SERVICEMAKER_<FLAG>   Any package flag, upper-cased with dashes as underscores
//	                      (e.g. SERVICEMAKER_IMAGE_NAME, SERVICEMAKER_NO_INPUT)
//	ACCESSIBLE            Use plain-text prompts instead of the interactive form
//
// # Exit Codes
//
//	0  Success
//	1  Any failure; the workspace is kept for inspection
package cli
