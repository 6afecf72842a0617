package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"ghostkit/compile"
	"ghostkit/config"
	"ghostkit/misc"
	"ghostkit/state"
)

// beforeCommand loads configuration and sets up report and logging once
// command line is parsed.
func beforeCommand(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		return ctx, nil
	}
	env := state.EnvFromContext(ctx)
	if err := prepareEnv(env, cmd.String("config"), cmd.Bool("debug")); err != nil {
		return ctx, err
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", misc.GetVersion()),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()))
	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(cmd.String("config")) == 0 {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func prepareEnv(env *state.LocalEnv, configFile string, withReport bool) (err error) {
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if withReport {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		// keep effective configuration when it did not come from defaults only
		if len(configFile) > 0 {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData("config/"+filepath.Base(configFile), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return fmt.Errorf("unable to prepare logs: %w", err)
	}
	return nil
}

// afterCommand syncs logs, writes report and cleans up. From here on errors
// go to stderr directly.
func afterCommand(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}
	env.RestoreStdLog()

	if er := env.Rpt.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
	}
	if env.Cfg != nil {
		err = multierr.Append(err, removeEmptyPanicLog(env.Cfg.Logging.FileLogger.Destination))
	}
	return err
}

// removeEmptyPanicLog drops crash output file prepared next to the log when
// nothing was written there.
func removeEmptyPanicLog(logName string) error {
	if len(logName) == 0 {
		return nil
	}
	debug.SetCrashOutput(nil, debug.CrashOptions{})

	name := filepath.Join(filepath.Dir(logName), misc.GetAppName()+"-panic.log")
	fi, err := os.Stat(name)
	if err != nil || fi.Size() != 0 {
		return nil
	}
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("unable to remove empty panic log file '%s': %w", name, err)
	}
	return nil
}

// Commands return plain errors, they are logged here while log is still
// available and reported to stderr only when logging was never set up.
var errWasLogged bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	if env := state.EnvFromContext(ctx); env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasLogged = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func commandNotFound(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

const compileHelp = `%s
SOURCE:
    block document(s) to compile, one of:
        a file: "[path_to_file]page.yaml"
        a directory: "[path_to_directory]directory" - every document under directory, recursively, in natural order (symbolic links are not followed)
        a document in archive: "[path_to_archive]site.zip[path_in_archive]/page.json"
        a part of archive: "[path_to_archive]site.zip[path_in_archive]" - every document under archive path

    Documents are YAML (.yaml, .yml) or JSON (.json). With --wxr WordPress
    export files (.xml, .wxr) are read instead and every exported post becomes
    a separate document. Archives inside archives are not processed.

DESTINATION:
    directory for results, file names follow source names with extension of the output type
    if absent - current working directory
`

const dumpconfigHelp = `%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Without --default writes effective configuration: embedded defaults with
values from configuration file applied on top.
`

func newApp() *cli.Command {
	return &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "compiler of ghostkit block styles",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          beforeCommand,
		After:           afterCommand,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: commandNotFound,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log everything and put logs, inputs and style dumps into report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "compile",
				Usage:        "Allocates block identifiers, recomputes block styles and writes results",
				OnUsageError: usageErrorHandler,
				Action:       compile.Run,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(config.OutputFormatCSS),
						Usage: "output `TYPE` (one of: " + strings.Join(config.OutputFormatNames(), ", ") + "), overrides configuration"},
					&cli.BoolFlag{Name: "check", Usage: "validate produced CSS, report problems as errors"},
					&cli.BoolFlag{Name: "wxr", Usage: "read sources as WordPress export (WXR) files"},
					&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "put all results directly into destination"},
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "replace existing results"},
				},
				ArgsUsage:          "SOURCE [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(compileHelp, cli.CommandHelpTemplate),
			},
			{
				Name:         "types",
				Usage:        "Lists known block types",
				OnUsageError: usageErrorHandler,
				Action:       listTypes,
			},
			{
				Name:  "dumpconfig",
				Usage: "Writes default or effective configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "write embedded default configuration"},
				},
				OnUsageError:       usageErrorHandler,
				Action:             dumpConfiguration,
				ArgsUsage:          "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(dumpconfigHelp, cli.CommandHelpTemplate),
			},
		},
	}
}

func main() {
	// documents are processed sequentially, interrupt is noticed between them
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	err := newApp().Run(ctx, os.Args)
	stop()
	if err != nil {
		// log may be not ready yet (bad arguments) or closed already
		if !errWasLogged {
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		}
		os.Exit(1)
	}
}
