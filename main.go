package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dirdirector/internal/applier"
	"dirdirector/internal/config"
	"dirdirector/internal/iconcache"
	"dirdirector/internal/output"
	"dirdirector/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
	"golang.org/x/term"
)

// Version info (set by ldflags)
var (
	version   = "dev"
	buildTime = "unknown"
	debugMode = false // Enable with --debug flag

	debugOutput io.Writer = os.Stderr
)

// debugLog logs a message if debug mode is enabled
func debugLog(format string, args ...interface{}) {
	if debugMode {
		fmt.Fprintf(debugOutput, "[DEBUG] "+format+"\n", args...)
	}
}

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// commonFlags are accepted before and after a subcommand
type commonFlags struct {
	queue        bool
	subfolders   bool
	closeOnApply bool
	configFile   string
	noColor      bool
	debug        bool

	queueSet bool
	closeSet bool
}

func addCommonFlags(fs *pflag.FlagSet, c *commonFlags) {
	fs.BoolVar(&c.queue, "queue", c.queue, "apply to one folder per action (overrides saved setting)")
	fs.BoolVar(&c.subfolders, "subfolders", c.subfolders, "include every subfolder of the targets")
	fs.BoolVar(&c.closeOnApply, "close-on-apply", c.closeOnApply, "exit after applying (overrides saved setting)")
	fs.StringVar(&c.configFile, "config", c.configFile, "read configuration from this YAML file")
	fs.BoolVar(&c.noColor, "no-color", c.noColor, "disable ANSI colors")
	fs.BoolVarP(&c.debug, "debug", "d", c.debug, "enable debug logging")
}

// collect records which overrides were given on fs
func (c *commonFlags) collect(fs *pflag.FlagSet) {
	c.queueSet = c.queueSet || fs.Changed("queue")
	c.closeSet = c.closeSet || fs.Changed("close-on-apply")
}

func applyCommonFlags(c commonFlags) {
	if c.noColor {
		output.DisableColor()
	}
	if c.debug {
		debugMode = true
		applier.DebugMode = true
		iconcache.DebugMode = true
	}
}

// setDebugOutput sends every package's debug log to w
func setDebugOutput(w io.Writer) {
	debugOutput = w
	applier.DebugOutput = w
	iconcache.DebugOutput = w
}

// openSession loads configuration and builds a session with the flag
// overrides applied. Settings problems are printed as warnings.
func openSession(c commonFlags) (*session.Session, error) {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, err
	}
	debugLog("config: cache=%s settings=%s backend=%s file=%s", cfg.CacheDir, cfg.SettingsPath, cfg.Backend, cfg.ConfigFile)

	s, err := session.New(cfg, version)
	if err != nil {
		return nil, err
	}
	if c.queueSet {
		s.OverrideQueueMode(c.queue)
	}
	if c.closeSet {
		s.OverrideCloseOnApply(c.closeOnApply)
	}
	if c.subfolders {
		s.Settings().SetApplyToSubfolders(true)
	}
	for _, w := range s.Warnings() {
		output.Warn(os.Stderr, "%s", w)
	}
	return s, nil
}

// absFolders resolves folder arguments against the working directory
func absFolders(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			abs = a
		}
		out = append(out, abs)
	}
	return out
}

func checkUpdate(currentVer string, explicit bool) {
	githubTag := &latest.GithubTag{
		Owner:      "dirdirector",
		Repository: "dirdirector",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		debugLog("update check failed: %v", err)
		return
	}

	if res.Outdated {
		fmt.Printf("A new version is available: %s (you have %s)\n", res.Current, currentVer)
	} else if explicit {
		fmt.Printf("You are using the latest version: %s\n", currentVer)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "dirdirector - change folder icons from a cache of .ico files\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  dirdirector [options] [--] [folders...]   open the icon picker\n")
	fmt.Fprintf(os.Stderr, "  dirdirector apply --icon FILE folders...  apply an icon or image\n")
	fmt.Fprintf(os.Stderr, "  dirdirector revert folders...             restore the default icon\n")
	fmt.Fprintf(os.Stderr, "  dirdirector list [--tree|--yaml] [--filter Q]\n")
	fmt.Fprintf(os.Stderr, "  dirdirector convert IMAGE [OUT.ico]\n")
	fmt.Fprintf(os.Stderr, "  dirdirector favorite add|remove ICON\n")
	fmt.Fprintf(os.Stderr, "  dirdirector install-menu | uninstall-menu\n\n")
	fmt.Fprintf(os.Stderr, "A folder named like a command is opened with: dirdirector [options] -- folders...\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	pflag.PrintDefaults()
}

func main() {
	var common commonFlags
	pflag.Usage = usage
	addCommonFlags(pflag.CommandLine, &common)
	versionFlag := pflag.BoolP("version", "v", false, "show version")
	updateFlag := pflag.BoolP("update", "u", false, "check for a newer release")
	helpFlag := pflag.BoolP("help", "h", false, "show this help")
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()
	common.collect(pflag.CommandLine)

	if *helpFlag {
		pflag.Usage()
		return
	}
	if *versionFlag {
		fmt.Printf("dirdirector %s (built %s)\n", version, buildTime)
		return
	}
	if *updateFlag {
		checkUpdate(version, true)
		return
	}

	applyCommonFlags(common)
	args := pflag.Args()
	if cmd, ok := lookupCommand(args, pflag.CommandLine.ArgsLenAtDash()); ok {
		os.Exit(cmd(args[1:], common))
	}
	os.Exit(runPicker(args, common))
}

// lookupCommand returns the subcommand named by the first argument. After
// a leading "--" (dashAt 0) every argument is a folder.
func lookupCommand(args []string, dashAt int) (command, bool) {
	if len(args) == 0 || dashAt == 0 {
		return nil, false
	}
	cmd, ok := commands[args[0]]
	return cmd, ok
}

// runPicker opens the TUI for folders
func runPicker(folders []string, c commonFlags) int {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		output.Failure(os.Stderr, "the picker needs a terminal; use 'dirdirector apply --icon FILE folders...'")
		return exitUsage
	}

	if debugMode {
		logPath := filepath.Join(os.TempDir(), "dirdirector-debug.log")
		f, err := tea.LogToFile(logPath, "debug")
		if err != nil {
			output.Failure(os.Stderr, "cannot open debug log: %v", err)
			return exitFailure
		}
		defer f.Close()
		setDebugOutput(f)
		output.Note(os.Stderr, "Debug log: %s", logPath)
	}

	s, err := openSession(c)
	if err != nil {
		output.Failure(os.Stderr, "%v", err)
		return exitFailure
	}
	if err := s.Config().EnsureDirectories(); err != nil {
		output.Warn(os.Stderr, "cannot create icon cache: %v", err)
	}
	s.SelectFolders(absFolders(folders)...)

	m := NewModel(s)
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		output.Failure(os.Stderr, "%v", err)
		return exitFailure
	}

	// Failures from the last action are repeated once the screen is gone
	if fm, ok := final.(*Model); ok && fm.lastResult != nil {
		if len(fm.lastResult.Failures) > 0 {
			output.PrintResult(os.Stderr, fm.lastVerb, *fm.lastResult, s.Targets())
			return exitFailure
		}
	}
	return exitOK
}
