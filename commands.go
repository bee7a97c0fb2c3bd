package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dirdirector/internal/config"
	"dirdirector/internal/icoconv"
	"dirdirector/internal/output"
	"dirdirector/internal/shellmenu"

	"github.com/spf13/pflag"
)

// command runs a subcommand and returns the process exit code
type command func(args []string, c commonFlags) int

var commands map[string]command

func init() {
	commands = map[string]command{
		"apply":          runApply,
		"revert":         runRevert,
		"list":           runList,
		"convert":        runConvert,
		"favorite":       runFavorite,
		"install-menu":   runInstallMenu,
		"uninstall-menu": runUninstallMenu,
	}
}

// newFlagSet creates a subcommand flag set that also takes the common flags
func newFlagSet(name string, c *commonFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	addCommonFlags(fs, c)
	return fs
}

// parse parses args and re-applies common flags given after the subcommand
func parse(fs *pflag.FlagSet, args []string, c *commonFlags) bool {
	if err := fs.Parse(args); err != nil {
		return false
	}
	c.collect(fs)
	applyCommonFlags(*c)
	return true
}

func runApply(args []string, c commonFlags) int {
	fs := newFlagSet("apply", &c)
	icon := fs.StringP("icon", "i", "", "icon (.ico, relative to the cache or a path) or image to apply")
	if !parse(fs, args, &c) {
		return exitUsage
	}
	if *icon == "" || fs.NArg() == 0 {
		output.Failure(os.Stderr, "usage: dirdirector apply --icon FILE folders...")
		return exitUsage
	}

	s, err := openSession(c)
	if err != nil {
		output.Failure(os.Stderr, "%v", err)
		return exitFailure
	}
	s.SelectFolders(absFolders(fs.Args())...)

	iconPath := s.ResolveIcon(*icon)
	debugLog("applying %s to %v", iconPath, s.Targets())
	result, err := s.ApplyFile(iconPath)
	if err != nil {
		output.Failure(os.Stderr, "%v", err)
		return exitFailure
	}
	output.PrintResult(os.Stdout, "Applied to", result, s.Targets())
	for _, w := range s.Warnings() {
		output.Warn(os.Stderr, "%s", w)
	}
	if !result.OK() {
		return exitFailure
	}
	return exitOK
}

func runRevert(args []string, c commonFlags) int {
	fs := newFlagSet("revert", &c)
	if !parse(fs, args, &c) {
		return exitUsage
	}
	if fs.NArg() == 0 {
		output.Failure(os.Stderr, "usage: dirdirector revert folders...")
		return exitUsage
	}

	s, err := openSession(c)
	if err != nil {
		output.Failure(os.Stderr, "%v", err)
		return exitFailure
	}
	s.SelectFolders(absFolders(fs.Args())...)

	result := s.Revert()
	output.PrintResult(os.Stdout, "Reverted", result, s.Targets())
	if !result.OK() {
		return exitFailure
	}
	return exitOK
}

func runList(args []string, c commonFlags) int {
	fs := newFlagSet("list", &c)
	tree := fs.Bool("tree", false, "print as a directory tree")
	asYAML := fs.Bool("yaml", false, "print as YAML")
	filter := fs.StringP("filter", "f", "", "only icons whose name or group contains these letters in order")
	if !parse(fs, args, &c) {
		return exitUsage
	}
	if *tree && *asYAML {
		output.Failure(os.Stderr, "--tree and --yaml cannot be combined")
		return exitUsage
	}

	s, err := openSession(c)
	if err != nil {
		output.Failure(os.Stderr, "%v", err)
		return exitFailure
	}
	cacheDir := s.Cache().BaseDir()
	groups := s.Groups(*filter)

	switch {
	case *asYAML:
		idx := output.NewIndex(cacheDir, groups, s.Favorites())
		if err := output.WriteYAML(os.Stdout, idx); err != nil {
			output.Failure(os.Stderr, "%v", err)
			return exitFailure
		}
	case *tree:
		fmt.Print(output.RenderTree(filepath.Base(cacheDir), groups, s.Favorites()))
	default:
		for _, f := range s.Favorites() {
			if !f.IsAction() {
				fmt.Printf("★ %s\t%s\n", f.Name, f.Group)
			}
		}
		for _, g := range groups {
			for _, icon := range g.Icons {
				fmt.Printf("  %s\t%s\n", icon.Name, g.Name)
			}
		}
	}
	return exitOK
}

func runConvert(args []string, c commonFlags) int {
	fs := newFlagSet("convert", &c)
	size := fs.IntP("size", "s", 0, "edge length in pixels (default from config)")
	keepAspect := fs.Bool("keep-aspect", false, "keep the aspect ratio instead of stretching")
	if !parse(fs, args, &c) {
		return exitUsage
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		output.Failure(os.Stderr, "usage: dirdirector convert IMAGE [OUT.ico]")
		return exitUsage
	}

	cfg, err := config.Load(c.configFile)
	if err != nil {
		output.Failure(os.Stderr, "%v", err)
		return exitFailure
	}
	if *size == 0 {
		*size = cfg.IconSize
	}
	if !fs.Changed("keep-aspect") {
		*keepAspect = cfg.KeepAspect
	}

	src := fs.Arg(0)
	dst := icoconv.IconPathFor(src)
	if fs.NArg() == 2 {
		dst = fs.Arg(1)
	}
	written, err := icoconv.Convert(src, dst, *size, *keepAspect)
	if err != nil {
		output.Failure(os.Stderr, "%v", err)
		return exitFailure
	}
	output.Success(os.Stdout, "Wrote %s", written)
	return exitOK
}

func runFavorite(args []string, c commonFlags) int {
	fs := newFlagSet("favorite", &c)
	if !parse(fs, args, &c) {
		return exitUsage
	}
	if fs.NArg() != 2 || (fs.Arg(0) != "add" && fs.Arg(0) != "remove") {
		output.Failure(os.Stderr, "usage: dirdirector favorite add|remove ICON")
		return exitUsage
	}

	s, err := openSession(c)
	if err != nil {
		output.Failure(os.Stderr, "%v", err)
		return exitFailure
	}
	iconPath := s.ResolveIcon(fs.Arg(1))
	if _, err := os.Stat(iconPath); err != nil {
		output.Failure(os.Stderr, "%v", err)
		return exitFailure
	}

	if fs.Arg(0) == "add" {
		err = s.AddFavorite(iconPath)
	} else {
		err = s.RemoveFavorite(iconPath)
	}
	if err != nil {
		output.Failure(os.Stderr, "%v", err)
		return exitFailure
	}
	for _, w := range s.Warnings() {
		output.Warn(os.Stderr, "%s", w)
	}
	output.Success(os.Stdout, "Favorites: %d", len(s.Favorites())-2)
	return exitOK
}

func runInstallMenu(args []string, c commonFlags) int {
	exe, err := os.Executable()
	if err != nil {
		output.Failure(os.Stderr, "%v", err)
		return exitFailure
	}
	present, err := shellmenu.Installed()
	if err != nil {
		return menuError(err)
	}
	if present {
		output.Note(os.Stdout, "Replacing the existing %q entry", shellmenu.Label)
	}
	if err := shellmenu.Install(exe); err != nil {
		return menuError(err)
	}
	output.Success(os.Stdout, "Added %q to the folder context menu", shellmenu.Label)
	return exitOK
}

func runUninstallMenu(args []string, c commonFlags) int {
	present, err := shellmenu.Installed()
	if err != nil {
		return menuError(err)
	}
	if !present {
		output.Note(os.Stdout, "The folder context menu entry is not installed")
		return exitOK
	}
	if err := shellmenu.Uninstall(); err != nil {
		return menuError(err)
	}
	output.Success(os.Stdout, "Removed the folder context menu entry")
	return exitOK
}

func menuError(err error) int {
	output.Failure(os.Stderr, "%v", err)
	if errors.Is(err, shellmenu.ErrUnsupported) {
		return exitUsage
	}
	return exitFailure
}
