package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mhadri/routeflow/pkg/config"
	"github.com/mhadri/routeflow/pkg/exec"
	"github.com/mhadri/routeflow/pkg/flow"
	"github.com/mhadri/routeflow/pkg/route"
	"github.com/mhadri/routeflow/pkg/runtime/defwatcher"
	"github.com/mhadri/routeflow/pkg/runtime/logging"
	"github.com/mhadri/routeflow/pkg/server"
	"github.com/mhadri/routeflow/pkg/step"
	"github.com/mhadri/routeflow/pkg/version"
	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "routeflow",
		Short: "Modular YAML workflow toolkit",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.routeflow/config.yaml)")

	root.AddCommand(runCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(routesCmd())
	root.AddCommand(stepsCmd())
	root.AddCommand(normalizeCmd())
	root.AddCommand(flattenCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// workspace bundles the pieces every command needs: config, registries, and
// a runner wired to them.
type workspace struct {
	cfg    *config.Config
	routes *route.Registry
	steps  *step.Registry
	store  *flow.Store
	runner *flow.Runner
}

func openWorkspace() (*workspace, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	routes := route.NewRegistry(cfg.RoutesPath)
	if err := routes.Load(); err != nil {
		return nil, err
	}
	steps := step.NewRegistry(cfg.StepsPath)
	if err := steps.Load(); err != nil {
		return nil, err
	}

	execTimeout, _ := time.ParseDuration(cfg.Exec.Timeout)
	executor := &exec.SafeExecutor{
		Timeout:   execTimeout,
		MaxOutput: cfg.Exec.MaxOutput,
		Blocklist: cfg.Exec.Blocklist,
	}

	store := flow.NewStore(cfg.RunsPath)
	runner := flow.NewRunner(routes, steps, executor, store)
	runner.SetLatencyFactor(cfg.LatencyFactor())

	return &workspace{cfg: cfg, routes: routes, steps: steps, store: store, runner: runner}, nil
}

func runCmd() *cobra.Command {
	var params []string
	var latencyFactor float64

	cmd := &cobra.Command{
		Use:   "run ROUTE",
		Short: "Execute a route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("latency-factor") {
				ws.runner.SetLatencyFactor(latencyFactor)
			}
			ws.runner.SetLogger(logging.New(ws.cfg.LogLevel, os.Getenv("ROUTEFLOW_LOG_FORMAT")))

			run, err := ws.runner.Run(cmd.Context(), args[0], parseParams(params))
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(run.Result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("📊 Final Result:\n%s\n", out)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&params, "param", nil, "step parameter KEY=VALUE (repeatable)")
	cmd.Flags().Float64Var(&latencyFactor, "latency-factor", 1, "scale for simulated step latency (0 disables)")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve loaded routes over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}

			logger := logging.New(ws.cfg.LogLevel, os.Getenv("ROUTEFLOW_LOG_FORMAT"))
			ws.runner.SetLogger(logger)
			ws.runner.SetQuiet(true)

			if addr == "" {
				addr = ws.cfg.Server.Address
			}
			srv := server.NewServer(addr, ws.routes, ws.runner, ws.store)
			srv.SetLogger(logger)
			srv.SetRequestLimit(ws.cfg.Server.RequestsPerMinute)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			for _, watch := range []struct {
				reloader defwatcher.Reloader
				path     string
			}{
				{ws.routes, ws.cfg.RoutesPath},
				{ws.steps, ws.cfg.StepsPath},
			} {
				watcher := defwatcher.New(watch.reloader, watch.path)
				watcher.SetLogger(logger)
				go func(w *defwatcher.Watcher) {
					if err := w.Start(ctx); err != nil && err != context.Canceled {
						fmt.Fprintln(os.Stderr, err)
					}
				}(watcher)
			}

			go func() {
				if err := srv.Start(ctx); err != nil && err != context.Canceled {
					fmt.Fprintln(os.Stderr, err)
					cancel()
				}
			}()

			fmt.Printf("routeflow gateway listening on %s (%d routes)\n", srv.Addr(), len(ws.routes.List()))
			waitForSignal(ctx)
			cancel()
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "gateway listen address")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Show workspace status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}

			available := 0
			for _, st := range ws.steps.List() {
				if st.Available {
					available++
				}
			}
			findings := 0
			for _, rt := range ws.routes.List() {
				findings += len(ws.routes.Findings(rt.Name))
			}

			fmt.Printf("Routes path: %s (%d routes, %d lint findings)\n", ws.cfg.RoutesPath, len(ws.routes.List()), findings)
			fmt.Printf("Steps path: %s (%d steps, %d available)\n", ws.cfg.StepsPath, len(ws.steps.List()), available)
			fmt.Printf("Runs path: %s\n", ws.cfg.RunsPath)
			fmt.Printf("Gateway: %s\n", ws.cfg.Server.Address)
			return nil
		},
	}
}

func parseParams(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			continue
		}
		params[kv[0]] = kv[1]
	}
	return params
}

func waitForSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
}
