//go:build !windows

package compose

// NewDefault is the surface factory for the running platform. Without a
// desktop to paint, the in-memory surface is all there is.
var NewDefault Factory = NewMemory
