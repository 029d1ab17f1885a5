package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tasktracker/internal/config"
	"tasktracker/internal/engine"
	"tasktracker/internal/logging"
	"tasktracker/internal/server"
	"tasktracker/internal/store"
	"tasktracker/internal/tui"
	tasksdk "tasktracker/sdk/go"
)

var rootCmd = &cobra.Command{
	Use:   "tt",
	Short: "Task Tracker CLI",
	Long: `Task Tracker keeps a list of tasks in memory and serves them over HTTP.
- serve: run the API (tasks live until the process exits).
- task: add, list, complete, reopen and remove tasks through a running server.
- tui: interactive terminal client for the same server.
- config: inspect or create tasktracker.yml.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("TASKTRACKER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("config", "c", config.FileName, "config file")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text|json)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().StringP("server", "s", "http://127.0.0.1:8000", "API base URL for client commands")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(configCmd())
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := effectiveConfig(viper.GetViper())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, os.Stderr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default from config, 127.0.0.1:8000)")
	cmd.Flags().String("base-path", "", "API base path")
	cmd.Flags().String("store", "", "store driver (memory|sqlite)")
	_ = viper.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("base-path", cmd.Flags().Lookup("base-path"))
	_ = viper.BindPFlag("store", cmd.Flags().Lookup("store"))
	return cmd
}

// effectiveConfig loads the config file and applies flag and environment
// overrides on top of it.
func effectiveConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.LoadOptional(v.GetString("config"))
	if err != nil {
		return nil, err
	}
	if v.IsSet("addr") && v.GetString("addr") != "" {
		cfg.Server.Addr = v.GetString("addr")
	}
	if v.IsSet("base-path") && v.GetString("base-path") != "" {
		cfg.Server.BasePath = v.GetString("base-path")
	}
	if v.IsSet("store") && v.GetString("store") != "" {
		cfg.Store.Driver = v.GetString("store")
	}
	if v.IsSet("log-level") && v.GetString("log-level") != "" {
		cfg.Log.Level = v.GetString("log-level")
	}
	if v.IsSet("log-format") && v.GetString("log-format") != "" {
		cfg.Log.Format = v.GetString("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	log, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Store.Driver)
	if err != nil {
		return err
	}
	defer st.Close()

	handler, err := server.New(server.Config{
		Engine:   engine.New(st, log),
		BasePath: cfg.Server.BasePath,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()
	log.WithFields(logrus.Fields{
		"addr":      cfg.Server.Addr,
		"base_path": cfg.Server.BasePath,
		"store":     cfg.Store.Driver,
	}).Infof("serving Task Tracker API on http://%s%s (OpenAPI at /openapi.json and /openapi.yaml, Swagger UI at /docs)", cfg.Server.Addr, cfg.Server.BasePath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("server stopped")
	return nil
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal client",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), newClient())
		},
	}
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create tasktracker.yml",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configInitCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective config (file plus overrides)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := effectiveConfig(viper.GetViper())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString("config")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// --- helpers ---

func newClient() *tasksdk.Client {
	return tasksdk.New(viper.GetString("server"))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
