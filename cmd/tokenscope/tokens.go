package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tokenScope/internal/cache"
	"tokenScope/internal/model"
	"tokenScope/internal/storage"
)

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Refresh the token list and print it",
		RunE:  runTokens,
	}
	addChainFlags(cmd)
	cmd.Flags().Bool("tradable", false, "only list tokens that can be quoted")
	cmd.Flags().Bool("cached", false, "skip the refresh and list the persisted cache")
	cmd.Flags().String("out", "", "optional JSONL export path")
	return cmd
}

func runTokens(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var failed error
	a, err := newApp(ctx, cmd, cache.WithRefreshObserver(func(r cache.RefreshResult) {
		failed = r.Err
	}))
	if err != nil {
		return err
	}
	defer a.close()

	cached, _ := cmd.Flags().GetBool("cached")
	if !cached {
		a.store.Refresh(ctx, a.cfg.Network)
		a.store.Wait()
		if failed != nil {
			a.logger.Warn("listing last known tokens", zap.Error(failed))
		}
	}

	tradable, _ := cmd.Flags().GetBool("tradable")
	records := sortedRecords(a.store.GetAll(a.cfg.Network, tradable))

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		jsonl := storage.NewJsonlStorage(out)
		if err := jsonl.Reset(); err != nil {
			return err
		}
		if err := jsonl.PutTokens(a.cfg.Network, records); err != nil {
			return err
		}
		a.logger.Info("tokens exported", zap.String("out", out), zap.Int("tokens", len(records)))
	}
	if a.db != nil {
		if err := a.db.UpsertTokens(ctx, a.cfg.Network, records); err != nil {
			return fmt.Errorf("upsert tokens: %w", err)
		}
	}

	return printRecords(records)
}

func sortedRecords(all map[common.Address]model.TokenRecord) []model.TokenRecord {
	list := make([]model.TokenRecord, 0, len(all))
	for _, rec := range all {
		list = append(list, rec)
	}
	model.SortRecords(list)
	return list
}

func printRecords(records []model.TokenRecord) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tNAME\tADDRESS\tDECIMALS\tEXCHANGE\tTRADABLE\tTRUSTED")
	for _, rec := range records {
		decimals := "?"
		if rec.Decimals >= 0 {
			decimals = fmt.Sprint(rec.Decimals)
		}
		pool := "-"
		if rec.HasExchange() {
			pool = rec.ExchangeAddress.Hex()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\t%t\n",
			rec.Symbol, rec.Name, rec.Address.Hex(), decimals, pool, rec.IsTradable(), rec.HasTrustBadge)
	}
	return w.Flush()
}
