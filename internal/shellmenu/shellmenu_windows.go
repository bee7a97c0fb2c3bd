//go:build windows

package shellmenu

import (
	"errors"

	"golang.org/x/sys/windows/registry"
)

const parentKey = `Software\Classes\Directory\shell`

func keyPath() string {
	return parentKey + `\` + KeyName
}

func install(exe string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, keyPath(), registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()

	if err := k.SetStringValue("", Label); err != nil {
		return err
	}
	if err := k.SetStringValue("Icon", exe); err != nil {
		return err
	}

	cmd, _, err := registry.CreateKey(registry.CURRENT_USER, keyPath()+`\command`, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer cmd.Close()
	return cmd.SetStringValue("", Command(exe))
}

func uninstall() error {
	if err := registry.DeleteKey(registry.CURRENT_USER, keyPath()+`\command`); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return err
	}
	if err := registry.DeleteKey(registry.CURRENT_USER, keyPath()); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return err
	}
	return nil
}

func installed() (bool, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, keyPath()+`\command`, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer k.Close()
	return true, nil
}
