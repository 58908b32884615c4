package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/server"
)

var (
	serveAddr    string
	serveBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing generation, the legacy AJAX endpoint and,
when DATABASE_URL and JWT_SECRET are set, accounts and saved CVs.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveBrowser, "browser", false, "Render job pages in headless Chrome when plain HTTP yields too little text")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	dispatcher, err := a.newDispatcher(ctx)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Config:    a.cfg,
		Generator: dispatcher,
		Jobs:      a.newLoader(serveBrowser),
		Logger:    a.logger,
	}
	if err := a.attachAccounts(ctx, &deps); err != nil {
		return err
	}

	srv, err := server.New(deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	addr := a.cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	return srv.Run(ctx, addr)
}

// attachAccounts connects the database and loads token settings. Accounts stay
// disabled when either is missing.
func (a *app) attachAccounts(ctx context.Context, deps *server.Deps) error {
	if a.cfg.DatabaseURL == "" {
		a.logger.Warn("database_url not set; accounts and saved CVs are disabled")
		return nil
	}

	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, database.Close)
	if err := database.Migrate(ctx); err != nil {
		return err
	}
	deps.DB = database

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		a.logger.Warn("accounts disabled", zap.Error(err))
		return nil
	}
	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}
	deps.JWT = jwtConfig
	deps.Passwords = passwords
	return nil
}
