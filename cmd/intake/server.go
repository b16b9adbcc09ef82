package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/intake/internal/api"
	"github.com/kalambet/intake/internal/engine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and the MCP stdio server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		noMCP, _ := cmd.Flags().GetBool("no-mcp")
		return runServer(noMCP)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show intake system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd)
	},
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Make sure the classifier model is available",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		printStep("Checking %s backend", a.cfg.Classifier.Backend)
		if err := engine.EnsureReady(cmd.Context(), a.engine, a.cfg.ClassifierModel(), cmd.OutOrStdout()); err != nil {
			return err
		}
		printSuccess("Classifier ready")
		return nil
	},
}

func init() {
	serveCmd.Flags().Bool("no-mcp", false, "do not start the MCP server on stdin/stdout")
}

func runServer(noMCP bool) error {
	fmt.Fprintf(os.Stderr, "intake version %s\n", version)

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := api.Deps{Processor: a.processor}

	addr := fmt.Sprintf("127.0.0.1:%d", a.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("intake listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if !noMCP {
		stdioSrv := server.NewStdioServer(api.NewMCPServer(deps, version))
		g.Go(func() error {
			slog.Info("MCP server started (stdio transport)")
			if err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")

		// Graceful shutdown with timeout.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func showStatus(cmd *cobra.Command) error {
	w := cmd.OutOrStdout()

	a, err := openApp()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}
	defer a.Close()

	printStatus(w, "Data dir", "%s", a.cfg.Storage.DataDir)
	if n, err := a.store.CountRecords(); err == nil {
		printStatus(w, "Records", "%d", n)
	} else {
		printStatus(w, "Records", "error: %v", err)
	}

	printStatus(w, "Backend", "%s", a.cfg.Classifier.Backend)
	model := a.cfg.ClassifierModel()
	printStatus(w, "Model", "%s", model)

	if a.engine == nil {
		printStatus(w, "Classifier", "not configured (intents default to Other)")
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if !a.engine.IsRunning(ctx) {
		printStatus(w, "Classifier", "unreachable")
		return nil
	}
	if a.engine.HasModel(ctx, model) {
		printStatus(w, "Classifier", "ready")
	} else {
		printStatus(w, "Classifier", "model missing (run intake setup)")
	}
	return nil
}
