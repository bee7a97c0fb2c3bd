//go:build windows

package applier

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	fcsmIconFile   = 0x00000010
	fcsForceWrite  = 0x00000002
	shcneUpdateDir = 0x00001000
	shcnfPathW     = 0x0005
)

var (
	shell32                          = windows.NewLazySystemDLL("shell32.dll")
	procSHGetSetFolderCustomSettings = shell32.NewProc("SHGetSetFolderCustomSettings")
	procSHChangeNotify               = shell32.NewProc("SHChangeNotify")
)

// shFolderCustomSettings mirrors SHFOLDERCUSTOMSETTINGS
type shFolderCustomSettings struct {
	Size                   uint32
	Mask                   uint32
	Vid                    *windows.GUID
	WebViewTemplate        *uint16
	WebViewTemplateLen     uint32
	WebViewTemplateVersion *uint16
	InfoTip                *uint16
	InfoTipLen             uint32
	Clsid                  *windows.GUID
	Flags                  uint32
	IconFile               *uint16
	IconFileLen            uint32
	IconIndex              int32
	Logo                   *uint16
	LogoLen                uint32
}

// ShellBackend uses the Shell32 folder customization API, which also
// takes care of the desktop.ini and folder attributes Explorer expects.
type ShellBackend struct{}

// NewShellBackend creates a Shell32 backend
func NewShellBackend() *ShellBackend {
	return &ShellBackend{}
}

// SetIcon sets or clears the folder icon through SHGetSetFolderCustomSettings
func (b *ShellBackend) SetIcon(folder, iconFile string) error {
	icon, err := windows.UTF16PtrFromString(iconFile)
	if err != nil {
		return err
	}
	path, err := windows.UTF16PtrFromString(folder)
	if err != nil {
		return err
	}

	fcs := shFolderCustomSettings{
		Mask:     fcsmIconFile,
		IconFile: icon,
	}
	fcs.Size = uint32(unsafe.Sizeof(fcs))

	hr, _, _ := procSHGetSetFolderCustomSettings.Call(
		uintptr(unsafe.Pointer(&fcs)),
		uintptr(unsafe.Pointer(path)),
		fcsForceWrite,
	)
	if hr != 0 {
		return fmt.Errorf("SHGetSetFolderCustomSettings: HRESULT 0x%08X", uint32(hr))
	}
	return nil
}

// NotifyShellChanged sends SHCNE_UPDATEDIR for the folder
func (b *ShellBackend) NotifyShellChanged(folder string) error {
	return notifyShell(folder)
}

// NewBackend returns the backend for a configured name
func NewBackend(name string) (FolderIconBackend, error) {
	switch name {
	case "", BackendAuto, BackendShell:
		return NewShellBackend(), nil
	case BackendINI:
		return NewINIBackend(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func notifyShell(folder string) error {
	path, err := windows.UTF16PtrFromString(folder)
	if err != nil {
		return err
	}
	if err := procSHChangeNotify.Find(); err != nil {
		return err
	}
	procSHChangeNotify.Call(shcneUpdateDir, shcnfPathW, uintptr(unsafe.Pointer(path)), 0)
	return nil
}

func isHidden(path string) (bool, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false, err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false, err
	}
	return attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0, nil
}

func hideFile(path string) error {
	return addAttributes(path, windows.FILE_ATTRIBUTE_HIDDEN)
}

func addAttributes(path string, add uint32) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return err
	}
	return windows.SetFileAttributes(p, attrs|add)
}

// prepareWrite clears hidden and system so desktop.ini can be rewritten
func prepareWrite(path string) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return
	}
	windows.SetFileAttributes(p, attrs&^(windows.FILE_ATTRIBUTE_HIDDEN|windows.FILE_ATTRIBUTE_SYSTEM|windows.FILE_ATTRIBUTE_READONLY))
}

// markCustomized applies the attributes Explorer needs to honor desktop.ini
func markCustomized(folder, iniPath string) error {
	if err := addAttributes(iniPath, windows.FILE_ATTRIBUTE_HIDDEN|windows.FILE_ATTRIBUTE_SYSTEM); err != nil {
		return err
	}
	return addAttributes(folder, windows.FILE_ATTRIBUTE_READONLY)
}
