package commands

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/crudkit/internal/cli/config"
	"github.com/conduit-lang/crudkit/internal/cli/ui"
	"github.com/conduit-lang/crudkit/internal/schema"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// globals are the persistent flags and the state derived from them.
type globals struct {
	configPath string
	verbose    bool
	noColor    bool

	level  zap.AtomicLevel
	logger *zap.Logger
}

func (g *globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, &configError{err: err}
	}
	if cfg.File != "" {
		g.logger.Debug("loaded config", zap.String("file", cfg.File))
	}
	return cfg, nil
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	g := &globals{level: zap.NewAtomicLevelAt(zap.WarnLevel), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "crudkit",
		Short: "Generate REST CRUD endpoints from annotated Go structs",
		Long: color.CyanString(`crudkit - CRUD endpoint generator

crudkit reads structs marked with a //crudkit:resource directive and
writes a <name>_crud.go file next to each of them. The generated code
mounts create, read, patch, put, delete and list endpoints on a chi
router, backed by database/sql.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if g.noColor {
				color.NoColor = true
			}
			if g.verbose {
				g.level.SetLevel(zap.DebugLevel)
			}
			g.logger = newLogger(cmd.ErrOrStderr(), g.level)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "config file (default ./crudkit.yml or $HOME/.crudkit/crudkit.yml)")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&g.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newGenerateCommand(g))
	rootCmd.AddCommand(newRoutesCommand(g))
	rootCmd.AddCommand(newInitCommand(g))

	return rootCmd
}

func newLogger(w io.Writer, level zap.AtomicLevel) *zap.Logger {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the crudkit version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)
			for _, line := range [][2]string{
				{"crudkit version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", goVer},
			} {
				titleColor.Fprint(out, line[0])
				fmt.Fprintln(out, line[1])
			}
		},
	}
}

// noColor reports whether output is uncolored, either by --no-color or
// because stdout is not a terminal.
func noColor() bool {
	return color.NoColor
}

// configError marks failures to load crudkit.yml.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// resourceNotFoundError is returned when a named resource does not exist.
type resourceNotFoundError struct {
	name        string
	suggestions []string
}

func (e *resourceNotFoundError) Error() string {
	return fmt.Sprintf("no resource named %q", e.name)
}

// reportError writes err to w in the user facing format of its kind.
func reportError(w io.Writer, err error) {
	plain := noColor()

	var (
		schemaErrs schema.ErrorList
		cfgErr     *configError
		notFound   *resourceNotFoundError
	)
	switch {
	case errors.As(err, &schemaErrs):
		problems := make([]string, len(schemaErrs))
		for i, e := range schemaErrs {
			problems[i] = e.Error()
		}
		fmt.Fprint(w, ui.SchemaError(problems, plain))
	case errors.As(err, &cfgErr):
		fmt.Fprint(w, ui.ConfigError(cfgErr.Error(), plain))
	case errors.As(err, &notFound):
		fmt.Fprint(w, ui.ResourceNotFoundError(notFound.name, notFound.suggestions, plain))
	default:
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(w, "Error: %v\n", err)
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
		return err
	}
	return nil
}
