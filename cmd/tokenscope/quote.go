package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tokenScope/internal/amount"
	"tokenScope/internal/model"
	"tokenScope/internal/pricing"
	"tokenScope/internal/tokens"
)

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a trade against live pool reserves",
		RunE:  runQuote,
	}
	addChainFlags(cmd)
	cmd.Flags().String("input", "ETH", "token sold (address or ETH)")
	cmd.Flags().String("output", "", "token bought (address or ETH)")
	cmd.Flags().String("amount", "", "amount in token units, e.g. 1.5")
	cmd.Flags().String("direction", string(pricing.ExactInput), "exact_input or exact_output")
	return cmd
}

func runQuote(cmd *cobra.Command, _ []string) error {
	rawIn, _ := cmd.Flags().GetString("input")
	rawOut, _ := cmd.Flags().GetString("output")
	rawAmount, _ := cmd.Flags().GetString("amount")
	rawDirection, _ := cmd.Flags().GetString("direction")

	direction, err := pricing.ParseDirection(rawDirection)
	if err != nil {
		return err
	}
	inAddr, err := tokens.ParseToken(rawIn)
	if err != nil {
		return err
	}
	outAddr, err := tokens.ParseToken(rawOut)
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

	in, err := a.store.ResolveToken(ctx, a.cfg.Network, inAddr)
	if err != nil {
		return err
	}
	out, err := a.store.ResolveToken(ctx, a.cfg.Network, outAddr)
	if err != nil {
		return err
	}

	fixed := in
	if direction == pricing.ExactOutput {
		fixed = out
	}
	if fixed.Decimals < 0 {
		return fmt.Errorf("%s has unknown decimals", fixed.Address.Hex())
	}
	value, err := amount.ParseUnits(rawAmount, fixed.Decimals)
	if err != nil {
		return err
	}

	quote, err := a.quoter.Quote(ctx, direction, value, in, out)
	if err != nil {
		return err
	}

	fmt.Printf("sell     %s %s\n", display(quote.InputAmount, in), in.Symbol)
	fmt.Printf("buy      %s %s\n", display(quote.OutputAmount, out), out.Symbol)
	if quote.EthAmount != nil {
		fmt.Printf("via      %s ETH\n", display(quote.EthAmount, model.NativeToken()))
	}
	fmt.Printf("marginal %s %s per %s\n", quote.MarginalPrice.String(), out.Symbol, in.Symbol)
	return nil
}

func display(value *big.Int, rec model.TokenRecord) string {
	return amount.FormatUnits(value, rec.Decimals)
}
