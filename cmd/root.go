package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/weedai/weedcoco-go/cmd/deepweeds"
	"github.com/weedai/weedcoco-go/cmd/validate"
	"github.com/weedai/weedcoco-go/cmd/yolo"
	"github.com/weedai/weedcoco-go/internal/buildinfo"
	"github.com/weedai/weedcoco-go/internal/conf"
	"github.com/weedai/weedcoco-go/internal/errors"
	"github.com/weedai/weedcoco-go/internal/logger"
	"github.com/weedai/weedcoco-go/internal/runtime"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Execute runs the weedcoco CLI with the process arguments and returns the exit code.
func Execute(build *buildinfo.Context) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := runtime.NewContext(build)
	return run(ctx, rt, RootCommand(rt))
}

// RootCommand creates and returns the root command
func RootCommand(rt *runtime.Context) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "weedcoco",
		Short: "Convert annotated weed image datasets to WeedCOCO",
		Long: `weedcoco converts third-party image annotation datasets into WeedCOCO,
COCO object detection JSON extended with agricultural context.`,
		Version:       rt.Build.String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	setupFlags(rootCmd, &configFile)

	rootCmd.AddCommand(
		deepweeds.Command(rt),
		yolo.Command(rt),
		validate.Command(rt),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Bare invocation and help only print usage
		if !cmd.HasParent() || cmd.Name() == "help" {
			return nil
		}

		if err := conf.BindFlags(rt.Viper, cmd.Flags()); err != nil {
			return err
		}
		if err := rt.Init(configFile); err != nil {
			return err
		}

		cmd.SetContext(logger.WithRunID(cmd.Context(), rt.RunID))
		return nil
	}

	markUsageErrors(rootCmd)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configFile *string) {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(configFile, "config", "", "Path to a config.yaml (default ./config.yaml or ~/.config/weedcoco/config.yaml)")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("log-level", "info", "Console log level: trace, debug, info, warn, error")
	flags.String("log-file", "", "Also write JSON log records to this file")
	flags.String("metrics-file", "", "Write run metrics in Prometheus textfile format to this file")

	conf.MapFlag(flags, "debug", "debug")
	conf.MapFlag(flags, "log-level", "log.level")
	conf.MapFlag(flags, "log-file", "log.file")
	conf.MapFlag(flags, "metrics-file", "metrics.textfile")
}

// markUsageErrors categorizes flag parsing and positional argument failures
// of c and its subcommands as usage errors.
func markUsageErrors(c *cobra.Command) {
	c.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return asUsage(err)
	})

	if args := c.Args; args != nil {
		c.Args = func(cmd *cobra.Command, a []string) error {
			if err := args(cmd, a); err != nil {
				return asUsage(err)
			}
			return nil
		}
	}

	for _, sub := range c.Commands() {
		markUsageErrors(sub)
	}
}

func asUsage(err error) error {
	return errors.New(err).Category(errors.CategoryUsage).Build()
}

// run executes root, releases runtime resources and maps the outcome to an exit code.
func run(ctx context.Context, rt *runtime.Context, root *cobra.Command) int {
	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		logFailure(rt, cmd, err)
	}
	if closeErr := rt.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
	if errors.IsUsage(err) {
		fmt.Fprintf(root.ErrOrStderr(), "Run '%s --help' for usage.\n", cmd.CommandPath())
		return ExitUsage
	}
	return ExitFailure
}

// logFailure records err with the component and category it was built with.
// It runs before the runtime is closed so the record reaches the log file.
func logFailure(rt *runtime.Context, cmd *cobra.Command, err error) {
	fields := []logger.Field{
		logger.String("command", cmd.CommandPath()),
		logger.Error(err),
	}
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		fields = append(fields,
			logger.String("component", ee.GetComponent()),
			logger.String("category", ee.GetCategory()))
	}
	rt.Log("cli").Debug("command failed", fields...)
}
