// Package defaults holds the named constants shared by the packaging pipeline:
// default base images, well-known file names inside the workspace and the
// built image, and the staging exclusion set.
package defaults
