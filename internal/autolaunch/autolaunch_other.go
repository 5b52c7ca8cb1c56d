//go:build !windows && !darwin && !linux

package autolaunch

// New reports ErrUnsupported.
func New(name string) (Launcher, error) {
	return nil, ErrUnsupported
}
