// ticketctl drives the ticket app from the command line. Each invocation
// acts like one page action against the configured store, so a file or
// Redis store carries the session from one call to the next.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"dario.cat/mergo"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/app"
	"github.com/spec-kit/ticketapp/internal/config"
	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/observability"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	store    string
	file     string
	redis    string
	logLevel string
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.store, "store", "", "storage driver: memory, file, redis, postgres, sqlite (default $STORAGE_DRIVER)")
	fs.StringVar(&g.file, "file", "", "file store path (default $STORAGE_FILE_PATH)")
	fs.StringVar(&g.redis, "redis-addr", "", "redis address (default $REDIS_ADDR)")
	fs.StringVar(&g.logLevel, "log-level", "", "log level (default $LOG_LEVEL)")
}

// overrides returns the flag values as a partial config.
func (g *globalFlags) overrides() config.Config {
	var cfg config.Config
	cfg.Storage.Driver = g.store
	cfg.Storage.FilePath = g.file
	cfg.Redis.Addr = g.redis
	cfg.Logger.Level = g.logLevel
	return cfg
}

func loadConfig(flags *globalFlags) (config.Config, error) {
	loaded, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	cfg := *loaded
	if err := mergo.Merge(&cfg, flags.overrides(), mergo.WithOverride); err != nil {
		return config.Config{}, fmt.Errorf("merge flags: %w", err)
	}
	// stdout is reserved for command output
	cfg.Logger.Format = "console"
	cfg.Logger.Output = "stderr"
	if flags.logLevel == "" && os.Getenv("LOG_LEVEL") == "" {
		cfg.Logger.Level = "warn"
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var flags globalFlags
	fs := pflag.NewFlagSet("ticketctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(stdout)
	flags.register(fs)
	fs.Usage = func() { printUsage(stdout, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 || rest[0] == "help" {
		printUsage(stdout, fs)
		return nil
	}

	cfg, err := loadConfig(&flags)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	a, err := app.New(ctx, cfg, logger, app.Options{
		ToastSink: func(t domain.Toast, visible bool) {
			if visible {
				fmt.Fprintln(stdout, t.Message)
			}
		},
	})
	if err != nil {
		logger.Error("open store failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
		return err
	}
	defer a.Close()

	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (see ticketctl help)", rest[0])
	}
	return cmd.run(ctx, a, rest[1:], stdout)
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: ticketctl [global flags] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-16s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "global flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
