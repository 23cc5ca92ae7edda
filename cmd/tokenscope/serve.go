package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tokenScope/internal/api"
	"tokenScope/internal/cache"
	"tokenScope/internal/chain"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tokens, quotes and metrics over HTTP",
		RunE:  runServe,
	}
	addChainFlags(cmd)
	cmd.Flags().String("listen", ":8080", "HTTP listen address")
	cmd.Flags().Duration("refresh-interval", 10*time.Minute, "token list refresh interval")
	cmd.Flags().StringSlice("watch", nil, "token addresses to resolve at startup (comma-separated)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := api.NewMetrics(reg)

	a, err := newApp(ctx, cmd, cache.WithRefreshObserver(metrics.ObserveRefresh))
	if err != nil {
		return err
	}
	defer a.close()

	watch, err := chain.ParseAddresses(a.cfg.Watch)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(ctx, a.store, a.quoter, []uint64{a.cfg.Network}, metrics, a.logger)
	srv := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           api.NewRouter(handler, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http server listening", zap.String("listen", a.cfg.Listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		refreshLoop(gctx, a, watch)
		return nil
	})

	err = g.Wait()
	a.logger.Info("tokenscope stopped")
	return err
}

// refreshLoop refreshes the token list right away and then every
// refresh-interval. Watched tokens are resolved once at startup.
func refreshLoop(ctx context.Context, a *app, watch []common.Address) {
	a.store.Refresh(ctx, a.cfg.Network)
	for _, token := range watch {
		a.store.GetToken(ctx, a.cfg.Network, token)
	}
	if a.cfg.RefreshInterval <= 0 {
		return
	}

	ticker := time.NewTicker(a.cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !a.store.Refresh(ctx, a.cfg.Network) {
				a.logger.Warn("previous token refresh still running")
			}
		}
	}
}
