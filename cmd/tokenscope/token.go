package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tokenScope/internal/model"
	"tokenScope/internal/tokens"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <address>",
		Short: "Resolve a single token",
		Args:  cobra.ExactArgs(1),
		RunE:  runToken,
	}
	addChainFlags(cmd)
	return cmd
}

func runToken(cmd *cobra.Command, args []string) error {
	addr, err := tokens.ParseToken(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	rec, err := a.store.ResolveToken(ctx, a.cfg.Network, addr)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(struct {
		Token    model.TokenRecord `json:"token"`
		Tradable bool              `json:"tradable"`
	}{rec, rec.IsTradable()}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
