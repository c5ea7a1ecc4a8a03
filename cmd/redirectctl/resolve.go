package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/pscheid92/redirector/internal/adapter/httpserver"
	"github.com/pscheid92/redirector/internal/app"
	"github.com/pscheid92/redirector/internal/bootstrap"
	"github.com/pscheid92/redirector/internal/platform/config"
	"github.com/pscheid92/redirector/internal/platform/logging"
)

const bootstrapTimeout = 10 * time.Second

func newResolveCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "resolve <host> <path>",
		Short: "Resolve a request against the configured rule store",
		Long: "Resolve runs the same alias and redirect lookup as the server, using the\n" +
			"store selected by RULE_STORE. The path may carry a query string.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.InitLoggerTo(os.Stderr, logLevel, cfg.LogFormat)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.StoreTimeout+bootstrapTimeout)
			defer cancel()

			stack, err := bootstrap.Build(ctx, cfg, nil, clockwork.NewRealClock())
			if err != nil {
				return err
			}
			defer stack.Close()

			return resolve(ctx, cmd, app.NewServiceForStore(stack.Store), args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
	return cmd
}

type resolver interface {
	Handle(ctx context.Context, requestDomain, path string, query url.Values) (app.Resolution, error)
}

func resolve(ctx context.Context, cmd *cobra.Command, svc resolver, hostArg, target string) error {
	host, err := httpserver.NormalizeHost(hostArg)
	if err != nil {
		return fmt.Errorf("invalid host %q: %w", hostArg, err)
	}

	path, rawQuery, _ := strings.Cut(target, "?")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return fmt.Errorf("invalid query %q: %w", rawQuery, err)
	}

	res, err := svc.Handle(ctx, host, path, query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "status:          %d\n", res.Status)
	_, _ = fmt.Fprintf(out, "resolved_domain: %s\n", res.ResolvedDomain)
	if res.Found() {
		_, _ = fmt.Fprintf(out, "location:        %s\n", res.Location)
	}
	return nil
}
