package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dbfwd/dbfwd/core/config"
	"github.com/dbfwd/dbfwd/core/logging"
	"github.com/dbfwd/dbfwd/core/runtime"
	apperrors "github.com/dbfwd/dbfwd/core/shared/errors"
)

// version stores the version string, set via SetVersion()
var version = "dev"

// SetVersion sets the version string (called from main.init())
func SetVersion(v string) {
	version = v
}

var (
	logLevel    string
	logFile     string
	configFile  string
	showVersion bool

	// exitCode is set by the run handler; Execute returns it.
	exitCode = apperrors.ExitOK
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "db_fwd <query_name> [query_param ...]",
	Short: "Forwards a SQL query result to a web API endpoint",
	Long: `db_fwd executes a named query from the configuration file against a
database, extracts its single JSON-valued field, and forwards it to the
configured API URL using basic authentication. The query, the outgoing
request and the incoming response are logged to a file and, when
log_db_url is configured, to a database table.

Exit codes:
  0  forward succeeded (2xx API response)
  1  internal error
  2  configuration error
  3  query error
  4  network error
  5  API responded with a non-2xx status`,
	Args: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			return nil
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE:          runForward,
	SilenceUsage:  true,
	SilenceErrors: true, // Errors are already printed, suppress Cobra's error output
}

func init() {
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Logging level: none, info or debug (overrides config file)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (overrides config file)")
	rootCmd.Flags().StringVar(&configFile, "config-file", config.DefaultConfigFile, "Configuration file path")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Print the installed version and exit")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "db_fwd: %v\n", err)
		return apperrors.ExitConfig
	}
	return exitCode
}

func runForward(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Fprintln(cmd.OutOrStdout(), version)
		return nil
	}
	opts := config.Options{
		ConfigFile:  configFile,
		LogLevel:    logLevel,
		LogFile:     logFile,
		QueryName:   args[0],
		QueryParams: args[1:],
	}

	// .env files next to the config file and in the CWD fill the
	// environment tier; real environment variables always win.
	LoadEnvFiles(filepath.Dir(configFile))

	settings, file, err := resolveSettings(opts)
	if err != nil {
		reportConfigError(opts, file, err)
		exitCode = apperrors.ExitCode(err)
		return nil
	}

	log := buildLogger(cmd.Context(), settings)
	defer log.Close()

	result, err := runtime.New(settings, log).Run(cmd.Context(), opts.QueryName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db_fwd: %v\n", err)
		exitCode = apperrors.ExitCode(err)
		return nil
	}

	if !result.Success {
		fmt.Fprintf(os.Stderr, "db_fwd: API responded with status %d\n", result.StatusCode)
		exitCode = apperrors.ExitAPIFailure
	}
	return nil
}

func resolveSettings(opts config.Options) (*config.ResolvedSettings, *config.File, error) {
	file, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, nil, err
	}

	if err := config.CheckFilePermissions(opts.ConfigFile); err != nil {
		console := logging.Console()
		console.Warn().Msg(err.Error())
	}

	settings, err := config.Resolve(file, opts)
	return settings, file, err
}

// reportConfigError emits a resolution failure to stderr and, to the extent
// the log file path is known at this point, to the file sink.
func reportConfigError(opts config.Options, file *config.File, err error) {
	fmt.Fprintf(os.Stderr, "db_fwd: %v\n", err)

	level := logging.LevelInfo
	if opts.LogLevel != "" {
		level = logging.ParseLevel(opts.LogLevel)
	} else if file != nil && file.Global.LogLevel != "" {
		level = logging.ParseLevel(file.Global.LogLevel)
	}
	if level == logging.LevelNone {
		return
	}

	path := opts.LogFile
	if path == "" && file != nil {
		path = file.Global.LogFile
	}
	if path == "" {
		path = config.DefaultLogFile
	}
	sink, sinkErr := logging.NewFileSink(path)
	if sinkErr != nil {
		return
	}
	log := logging.New(level, sink, nil)
	log.Error(context.Background(), "%v", err)
	log.Close()
}

// buildLogger assembles the dual-sink logger from the resolved settings.
// Sink construction failures degrade the run instead of aborting it;
// logging must never prevent the forward operation itself.
func buildLogger(ctx context.Context, settings *config.ResolvedSettings) *logging.Logger {
	level := logging.ParseLevel(settings.LogLevel)

	// The file sink is always enabled; the threshold gates each entry.
	var file logging.Sink
	if fs, err := logging.NewFileSink(settings.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "db_fwd: %v\n", err)
	} else {
		file = fs
	}

	var db logging.Sink
	if settings.LogDBURL != "" {
		ds, err := logging.NewDBSink(ctx, settings.LogDBURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "db_fwd: failed to initialize database log sink: %v\n", err)
		} else {
			db = ds
		}
	}

	return logging.New(level, file, db)
}

// LoadEnvFiles attempts to load .env files, first from the given directory
// and then from the current working directory, stopping at the first
// successful load. System environment variables always take precedence over
// .env file values.
func LoadEnvFiles(fromDir string) {
	envFiles := []string{".env.local", ".env.development", ".env"}

	if fromDir != "" && fromDir != "." {
		for _, envFile := range envFiles {
			if err := godotenv.Load(filepath.Join(fromDir, envFile)); err == nil {
				return
			}
		}
	}

	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			return
		}
	}
}
