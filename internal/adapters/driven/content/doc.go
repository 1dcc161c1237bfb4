// Package content routes source references to the content provider
// that can fetch them. Concrete providers live in the subpackages:
// file (local paths), web (http/https), github (github:// refs) and
// gdrive (gdrive:// refs).
package content
