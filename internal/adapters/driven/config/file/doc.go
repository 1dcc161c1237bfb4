// Package file provides the TOML-backed configuration store and the
// mapping between stored keys, environment overrides, and the typed
// domain settings.
package file
