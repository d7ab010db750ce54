package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/danielpatrickdp/whatif-engine/internal/config"
	"github.com/danielpatrickdp/whatif-engine/internal/engine"
	"github.com/danielpatrickdp/whatif-engine/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// #region app

// app carries state shared by every subcommand. The engine is built lazily
// in the root's PersistentPreRunE and released by close.
type app struct {
	configPath string
	logLevel   string
	trace      bool

	log      *zap.Logger
	eng      *engine.Engine
	shutdown func(context.Context) error
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log = log
	if a.trace {
		shutdown, err := installTracing(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		a.shutdown = shutdown
	}
	eng, err := engine.Build(cfg, log)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	a.eng = eng
	return nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.eng != nil {
		errs = append(errs, a.eng.Close())
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return errors.Join(errs...)
}

// #endregion app

// #region root

// Execute runs the whatif command line with the process arguments.
func Execute(ctx context.Context) error {
	return run(ctx, nil, nil)
}

// run executes the root command; nil args uses os.Args and nil out uses stdout.
func run(ctx context.Context, args []string, out io.Writer) (err error) {
	a := &app{}
	root := newRoot(a)
	if args != nil {
		root.SetArgs(args)
	}
	if out != nil {
		root.SetOut(out)
	}
	defer func() {
		if cerr := a.close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return root.ExecuteContext(ctx)
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "whatif",
		Short:         "Generate \"what if\" story prompts and branch suggestions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.trace, "trace", false, "print otel spans to stderr")

	root.AddCommand(
		promptsCmd(a),
		branchesCmd(a),
		healthCmd(a),
		templatesCmd(a),
	)
	return root
}

// #endregion root

// #region output

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// #endregion output
