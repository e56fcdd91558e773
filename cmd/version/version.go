package version

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/dfaudit/internal/classify"
	"github.com/scan-io-git/dfaudit/pkg/shared/config"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = runtime.Version()
	BuildTime     = "unknown"
)

// Versions holds version information for the application.
type Versions struct {
	Version       string
	GolangVersion string
	BuildTime     string
	Patterns      []string
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application and its pattern table",
		Args:                  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersionInfo(cmd.OutOrStdout(), &Versions{
				Version:       CoreVersion,
				GolangVersion: GolangVersion,
				BuildTime:     BuildTime,
				Patterns:      patternNames(AppConfig),
			})
		},
	}
}

// patternNames lists the active pattern table, configured or built-in.
func patternNames(cfg *config.Config) []string {
	var configured []config.Pattern
	if cfg != nil {
		configured = cfg.Audit.Patterns
	}
	var names []string
	for _, d := range classify.DefinitionsFromConfig(configured) {
		names = append(names, d.Name)
	}
	return names
}

// printVersionInfo prints the version information.
func printVersionInfo(w io.Writer, versions *Versions) {
	fmt.Fprintf(w, "Core Version: v%s\n", versions.Version)
	fmt.Fprintln(w, "Patterns:")
	for _, name := range versions.Patterns {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintf(w, "Go Version: %s\n", versions.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", versions.BuildTime)
}
