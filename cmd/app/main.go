package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"portfolio/internal/config"
	"portfolio/internal/db"
	"portfolio/internal/logging"
	"portfolio/internal/mail"
	"portfolio/internal/metrics"
	"portfolio/internal/seed"
	"portfolio/internal/server"
	"portfolio/internal/services"
	"portfolio/internal/upload"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	v      *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio site: public pages, JSON API and admin backend",
	Long: `Serves the portfolio site and its JSON API.

Run without a subcommand to start the server. Configuration comes from the
environment (and a .env file when present); flags override it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.FromViper(v)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err = logging.New(cfg.IsDev())
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate, ensure the admin account and start the HTTP server",
	RunE:  serve,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Connect(cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(); err != nil {
			return err
		}
		logger.Info("schema up to date", zap.String("driver", cfg.DBDriver))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample admin, projects and blog posts (idempotent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Connect(cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(); err != nil {
			return err
		}
		s := seed.New(store,
			services.NewProjectService(store, nil, logger),
			services.NewBlogService(store, nil, cfg.AdminName, logger),
			logger)
		res, err := s.Run(seed.Admin{Email: cfg.AdminEmail, Password: cfg.AdminPassword, Name: cfg.AdminName})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d projects and %d posts\n", res.Projects, res.Posts)
		return nil
	},
}

func init() {
	v = config.Viper()

	flags := rootCmd.PersistentFlags()
	flags.String("env", v.GetString("go_env"), "runtime environment (development or production)")
	flags.String("port", v.GetString("server_port"), "port to listen on")
	flags.String("db-driver", v.GetString("db_driver"), "database driver (sqlite or postgres)")
	flags.String("db-dsn", v.GetString("db_dsn"), "database connection string")
	_ = v.BindPFlag("go_env", flags.Lookup("env"))
	_ = v.BindPFlag("server_port", flags.Lookup("port"))
	_ = v.BindPFlag("db_driver", flags.Lookup("db-driver"))
	_ = v.BindPFlag("db_dsn", flags.Lookup("db-dsn"))

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return err
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := store.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			return err
		}
	} else {
		logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin bootstrap")
	}

	storage, err := upload.NewStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	uploads := upload.NewUploader(storage, cfg.MaxUploadBytes, logger)

	queue := mail.NewQueue(mail.New(cfg, logger), logger)
	defer queue.Close()

	srv := server.New(server.Deps{
		Config:    cfg,
		Log:       logger,
		Store:     store,
		Projects:  services.NewProjectService(store, uploads, logger),
		Blog:      services.NewBlogService(store, uploads, cfg.AdminName, logger),
		Contacts:  services.NewContactService(store, queue, logger),
		Auth:      services.NewAuthService(store, cfg.SignKey, cfg.JWTExpires, logger),
		Dashboard: services.NewDashboardService(store),
		Uploads:   uploads,
		Metrics:   metrics.New(),
	})
	return srv.Start(ctx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
