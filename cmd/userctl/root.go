package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dropDatabas3/docuser/internal/app"
	"github.com/dropDatabas3/docuser/internal/config"
	"github.com/dropDatabas3/docuser/internal/observability/logger"
	"github.com/dropDatabas3/docuser/internal/observability/tracing"
)

// cli guarda el estado compartido entre comandos: flags globales y el
// container armado en PersistentPreRunE.
type cli struct {
	out        io.Writer
	configPath string
	driver     string
	outFormat  string

	app      *app.Container
	shutdown func(context.Context) error
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out, outFormat: "text"}

	root := &cobra.Command{
		Use:           "userctl",
		Short:         "Consulta y actualiza usuarios en el store de documentos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Ruta al YAML de configuración (env DOCUSER_CONFIG)")
	root.PersistentFlags().StringVar(&c.driver, "driver", "", "Adapter de store: memory|fs|sqlite|postgres|redis|firestore|raft")
	root.PersistentFlags().StringVar(&c.outFormat, "out", c.outFormat, "Formato de salida: json|text")

	root.AddCommand(
		c.findCmd(),
		c.updateCmd(),
		c.seedCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	// .env opcional; si no existe seguimos con el entorno del sistema.
	_ = godotenv.Load()

	if c.outFormat != "text" && c.outFormat != "json" {
		return fmt.Errorf("--out must be json or text, got %q", c.outFormat)
	}

	path := c.configPath
	if path == "" {
		path = strings.TrimSpace(envOr(config.EnvPrefix+"CONFIG", ""))
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.driver != "" {
		cfg.Store.Driver = strings.ToLower(strings.TrimSpace(c.driver))
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger.Init(cfg.LoggerConfig())
	ctx := logger.ToContext(cmd.Context(), logger.Named("userctl"))

	c.shutdown, err = tracing.Setup(ctx, cfg.TracingConfig())
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	c.app, err = app.New(ctx, cfg)
	if err != nil {
		_ = c.shutdown(ctx)
		return err
	}
	cmd.SetContext(ctx)
	return nil
}

func (c *cli) teardown(ctx context.Context) error {
	var err error
	if c.app != nil {
		err = c.app.Close()
		c.app = nil
	}
	if c.shutdown != nil {
		if serr := c.shutdown(ctx); serr != nil {
			logger.L().Warn("tracing shutdown", zap.Error(serr))
		}
		c.shutdown = nil
	}
	_ = logger.Sync()
	return err
}

// printJSON escribe v indentado.
func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
