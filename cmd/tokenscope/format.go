package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"tokenScope/internal/amount"
)

func newFormatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format <amount>",
		Short: "Format a base unit amount for display",
		Args:  cobra.ExactArgs(1),
		RunE:  runFormat,
	}
	cmd.Flags().Int("base", 18, "decimals of the amount")
	cmd.Flags().Int("display", 4, "fractional digits to show")
	cmd.Flags().Bool("less-than", true, "render tiny amounts as <minimum")
	return cmd
}

func runFormat(cmd *cobra.Command, args []string) error {
	value, ok := new(big.Int).SetString(args[0], 10)
	if !ok {
		return fmt.Errorf("%w: %q", amount.ErrInvalidAmount, args[0])
	}
	base, _ := cmd.Flags().GetInt("base")
	display, _ := cmd.Flags().GetInt("display")
	lessThan, _ := cmd.Flags().GetBool("less-than")

	out, err := amount.Format(value, base, display, lessThan)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
