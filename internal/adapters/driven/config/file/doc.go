// Package file provides the TOML-backed configuration source. The
// source loads overrides over domain.DefaultConfig and can watch the
// file for changes, so tuning parameters apply without a restart.
package file
