//go:build !windows

package picker

func pickFileDialog(title, initialDir, filter string) (string, error) {
	return "", ErrUnsupported
}
