package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

type AppFlags struct {
	GlobalConfigFile string
	Paths            []string
	NoUserDirs       bool
	External         bool
	Mode             string
	NoClipboard      bool
}

// pathList collects a repeatable -path flag.
type pathList []string

func (p *pathList) String() string {
	return strings.Join(*p, ",")
}

func (p *pathList) Set(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("path must not be empty")
	}
	*p = append(*p, value)
	return nil
}

// ParseFlags parses args (without the program name) into AppFlags.
func ParseFlags(args []string, output io.Writer) (AppFlags, error) {
	fs := flag.NewFlagSet("zeroleaks", flag.ContinueOnError)
	fs.SetOutput(output)

	globalConfigFile := fs.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := fs.String("c", "", "Alias for -config")

	var paths pathList
	fs.Var(&paths, "path", "Directory to monitor. Repeatable. Defaults to the configured watch paths, or the current directory.")
	fs.Var(&paths, "p", "Alias for -path")

	noUserDirs := fs.Bool("no-user-dirs", false, "Do not monitor the Desktop, Documents and Downloads directories")

	external := fs.Bool("external", false, "Monitor removable drives as they are attached")
	externalAlias := fs.Bool("e", false, "Alias for -external")

	modeFlag := fs.String("mode", "", "Mode to run the tool: headless or background (overrides config file if set)")
	modeFlagAlias := fs.String("m", "", "Alias for -mode")

	noClipboard := fs.Bool("no-clipboard", false, "Disable clipboard monitoring")

	if err := fs.Parse(args); err != nil {
		return AppFlags{}, err
	}
	if fs.NArg() > 0 {
		return AppFlags{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	flags := AppFlags{
		Paths:       paths,
		NoUserDirs:  *noUserDirs,
		External:    *external || *externalAlias,
		NoClipboard: *noClipboard,
	}

	if *globalConfigFile != "" {
		flags.GlobalConfigFile = *globalConfigFile
	} else if *globalConfigFileAlias != "" {
		flags.GlobalConfigFile = *globalConfigFileAlias
	}

	if *modeFlag != "" {
		flags.Mode = *modeFlag
	} else if *modeFlagAlias != "" {
		flags.Mode = *modeFlagAlias
	}
	flags.Mode = strings.ToLower(strings.TrimSpace(flags.Mode))

	return flags, nil
}
