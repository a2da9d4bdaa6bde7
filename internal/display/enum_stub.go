//go:build !windows

package display

// Enumerate has no backend off Windows; the playback pipeline is tested
// against synthetic monitor sets instead.
func Enumerate() ([]Monitor, error) {
	return nil, ErrUnsupported
}
