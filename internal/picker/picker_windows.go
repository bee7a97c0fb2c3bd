//go:build windows

package picker

import (
	"fmt"
	"os/exec"
	"strings"
)

func pickFileDialog(title, initialDir, filter string) (string, error) {
	script := fmt.Sprintf(`
Add-Type -AssemblyName System.Windows.Forms
$dlg = New-Object System.Windows.Forms.OpenFileDialog
$dlg.Title = '%s'
$dlg.Filter = '%s'
$dlg.Multiselect = $false
if ('%s' -ne '') { $dlg.InitialDirectory = '%s' }
if ($dlg.ShowDialog() -eq [System.Windows.Forms.DialogResult]::OK) {
  Write-Output $dlg.FileName
}
`, quote(title), quote(filter), quote(initialDir), quote(initialDir))

	cmd := exec.Command("powershell", "-NoProfile", "-STA", "-Command", script)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%v: %s", err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

// quote escapes a value for a single-quoted PowerShell string
func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
