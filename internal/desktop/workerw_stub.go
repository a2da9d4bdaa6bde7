//go:build !windows

package desktop

// FindWorkerW has no equivalent outside the Windows shell.
func FindWorkerW() (uintptr, error) {
	return 0, ErrUnsupported
}
