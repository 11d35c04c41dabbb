package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medbook/medbook/internal/config"
	"github.com/medbook/medbook/internal/domain/user"
	"github.com/medbook/medbook/internal/platform/auth"
	"github.com/medbook/medbook/internal/platform/db"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medbook-server",
		Short: "Medical appointment booking API server",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; real environment variables win
			_ = godotenv.Load()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Start the API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run PostgreSQL schema migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withMigrator(dir, func(ctx context.Context, m *db.Migrator) error {
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withMigrator(dir, func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}

				fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				fmt.Println("---------- ---------------------------------------- ---------- --------------------")
				for _, s := range statuses {
					status := "pending"
					appliedAt := ""
					if s.Applied {
						status = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
				}
				return nil
			})
		},
	}
	statusCmd.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
	cmd.AddCommand(statusCmd)

	return cmd
}

func withMigrator(dir string, fn func(context.Context, *db.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for migrations")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{MaxConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()

	m := db.NewMigrator(pool, db.Migrations, "migrations")
	if dir != "" {
		m = db.NewMigrator(pool, os.DirFS(dir), ".")
	}
	return fn(ctx, m)
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if username == "" || email == "" || password == "" {
				return errors.New("--username, --email and --password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.close()

			tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.TokenTTL)
			svc := user.NewService(st.users, tokens, auth.NewMemoryRevocationStore())
			id, err := svc.CreateAdmin(ctx, user.RegisterRequest{Username: username, Email: email, Password: password})
			if err != nil {
				return err
			}
			fmt.Printf("Administrator %s created with id %d.\n", email, id)
			return nil
		},
	}
	createCmd.Flags().String("username", "", "Display name")
	createCmd.Flags().String("email", "", "Login email")
	createCmd.Flags().String("password", "", "Initial password")

	cmd.AddCommand(createCmd)
	return cmd
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	logger := newLogger(os.Getenv("ENV"))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}
	defer st.close()
	logger.Info().Str("driver", cfg.StorageDriver).Msg("connected to database")

	deps, cleanup := wireDeps(cfg, logger, st)
	defer cleanup()

	e := newServer(cfg, logger, deps)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	if err := serve(e, ":"+cfg.Port, quit, logger); err != nil {
		logger.Error().Err(err).Msg("server failed")
		return err
	}
	return nil
}

// serve runs e until it fails to listen or a signal arrives on quit, then
// shuts it down gracefully.
func serve(e *echo.Echo, addr string, quit <-chan os.Signal, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-quit:
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
		return err
	}
	return nil
}
