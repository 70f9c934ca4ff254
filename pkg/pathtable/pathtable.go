// Package pathtable centralizes the well-known repository paths spec.md §6
// fixes as the normative on-disk layout, so other packages build these
// filesystem paths from one table. The "link: links/helm/<course>" text
// stored inside HELM is composed separately, in pkg/refs.
package pathtable

import "path/filepath"

const (
	DockDirName    = ".dock"
	IgnoreFileName = ".dockignore"

	configFileName = "config.toml"
	helmFileName   = "HELM"
	stageFileName  = "stage"
	objectsDirName = "objects"
	starlogsDir    = "starlogs"
	linksDirName   = "links"
	helmLinkDir    = "helm"
)

// DockDir returns the .dock directory for a repository rooted at root.
func DockDir(root string) string {
	return filepath.Join(root, DockDirName)
}

// IgnoreFile returns the path to the repository's .dockignore file.
func IgnoreFile(root string) string {
	return filepath.Join(root, IgnoreFileName)
}

// ConfigFile returns the path to .dock/config.toml.
func ConfigFile(dockDir string) string {
	return filepath.Join(dockDir, configFileName)
}

// HelmFile returns the path to .dock/HELM.
func HelmFile(dockDir string) string {
	return filepath.Join(dockDir, helmFileName)
}

// StageFile returns the path to .dock/stage.
func StageFile(dockDir string) string {
	return filepath.Join(dockDir, stageFileName)
}

// ObjectsDir returns the root of the blob/tree shard tree.
func ObjectsDir(dockDir string) string {
	return filepath.Join(dockDir, objectsDirName)
}

// StarlogsDir returns the root of the starlog shard tree.
func StarlogsDir(dockDir string) string {
	return filepath.Join(dockDir, starlogsDir)
}

// CoursesDir returns the directory holding one ref file per course.
func CoursesDir(dockDir string) string {
	return filepath.Join(dockDir, linksDirName, helmLinkDir)
}

// CourseFile returns the ref file for the named course.
func CourseFile(dockDir, name string) string {
	return filepath.Join(CoursesDir(dockDir), name)
}
