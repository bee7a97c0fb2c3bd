//go:build !windows

package shellmenu

func install(exe string) error {
	return ErrUnsupported
}

func uninstall() error {
	return ErrUnsupported
}

func installed() (bool, error) {
	return false, ErrUnsupported
}
