//go:build windows

package compose

// NewDefault is the surface factory for the running platform.
var NewDefault Factory = NewGDI
