// Package desktop locates the hidden shell window that renders the desktop
// background beneath the icons.
package desktop

import "errors"

// ErrDesktopNotFound implies no WorkerW render target could be located.
// This is fatal for a playback session.
var ErrDesktopNotFound = errors.New("desktop background window (WorkerW) not found")

// ErrUnsupported is returned off Windows, where there is no shell to ask.
var ErrUnsupported = errors.New("desktop background lookup not supported on this platform")
