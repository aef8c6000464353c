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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/yoockh/dojoportal/config"
	"github.com/yoockh/dojoportal/internal/logger"
	"github.com/yoockh/dojoportal/internal/server"
	"github.com/yoockh/dojoportal/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dojoportal",
		Short:        "Martial-arts club portal API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	root.AddCommand(newSeedCmd())
	return root
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("startup failed")
		return err
	}
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	log.WithField("addr", httpSrv.Addr).Info("server started")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
			return err
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown error")
			return err
		}
	}

	log.Info("server stopped")
	return nil
}

func newSeedCmd() *cobra.Command {
	var req services.SeedRequest

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the first admin and player accounts",
		Long: `seed creates one admin and one player account. It is gated by
SETUP_SECRET exactly like POST /setup/seed; pass it with --secret or leave
the flag empty to use the configured value.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if req.Secret == "" {
				req.Secret = cfg.SetupSecret
			}

			srv, err := server.New(cmd.Context(), cfg, logger.New(cfg.LogLevel))
			if err != nil {
				return err
			}
			defer srv.Close()

			res, err := srv.Accounts.Seed(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin  %s  %s\nplayer %s  %s\n",
				res.Admin.UserID, res.Admin.Email, res.Player.UserID, res.Player.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Secret, "secret", "", "Setup secret (default: SETUP_SECRET)")
	cmd.Flags().StringVar(&req.AdminEmail, "admin-email", "", "Admin account email")
	cmd.Flags().StringVar(&req.AdminPassword, "admin-password", "", "Admin account password")
	cmd.Flags().StringVar(&req.PlayerEmail, "player-email", "", "Player account email")
	cmd.Flags().StringVar(&req.PlayerPassword, "player-password", "", "Player account password")
	return cmd
}
