package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/r9s-ai/textmate-validate/internal/logx"
	"github.com/r9s-ai/textmate-validate/internal/server"
)

type serveOptions struct {
	listen string
	h2c    bool
}

func newServeCmd(a *app) *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				a.cfg.Serve.Listen = strings.TrimSpace(opts.listen)
			}
			if cmd.Flags().Changed("h2c") {
				a.cfg.Serve.H2C = opts.h2c
			}
			return a.runServe(cmd)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.listen, "listen", "", "http listen address (overrides TMV_SERVE_LISTEN)")
	fs.BoolVar(&opts.h2c, "h2c", false, "also accept cleartext HTTP/2")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	accessLog, err := logx.CompileAccessLogFormat(a.cfg.Logging.AccessLogFormat)
	if err != nil {
		return err
	}
	// Access lines are logged at info.
	logger := a.logger
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		logger, err = logx.New(zapcore.InfoLevel.String(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}
	srv := server.New(server.Options{
		Listen:       a.cfg.Serve.Listen,
		H2C:          a.cfg.Serve.H2C,
		Engine:       a.cfg.Engine,
		Concurrency:  a.cfg.Concurrency,
		MaxBodyBytes: a.cfg.Serve.MaxBodyBytes,
		AccessLog:    accessLog,
		Logger:       logger,
	})
	return srv.Run(cmd.Context())
}
