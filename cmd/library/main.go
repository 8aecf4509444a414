package main

import (
	"context"
	"io/fs"
	stdLog "log"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/naratama/library-service/library/app"
	"github.com/naratama/library-service/library/config"
)

//	@title			Naratama Library API
//	@version		1.0.0
//	@description	Library loans, coworking room bookings and memberships.
//	@BasePath		/
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						naratama.sid

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		stdLog.Fatal("load envs from .env ", err)
	}
	if err := rootCmd().Execute(); err != nil {
		stdLog.Fatal(err)
	}
}

func loadConfig() *config.Config {
	return config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)
}

func rootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.Run(loadConfig())
		},
	}
	root := &cobra.Command{
		Use:          "library",
		Short:        "Naratama library and coworking backend",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		Run:          serve.Run,
	}
	root.AddCommand(serve, migrateCmd(), seedCmd())
	return root
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect database migrations",
		ValidArgs: []string{"up", "down", "status"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Migrate(cmd.Context(), loadConfig(), args[0])
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, books, rooms and a welcome announcement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			return app.Seed(ctx, loadConfig())
		},
	}
}
