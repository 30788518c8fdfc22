package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Mohsinsiddi/tsender/internal/amount"
	"github.com/spf13/cobra"
)

var totalCmd = &cobra.Command{
	Use:   "total [amounts...]",
	Short: "Sum free-form amount text",
	Long: `Add up every number in the amount text, ignoring currency symbols and
entries that are not numbers. With no arguments the text is read from stdin.

Examples:
  tsender total 10,20,30
  tsender total '$1.5' '2.5' abc
  cat amounts.txt | tsender total`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, "\n")
		if len(args) == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			text = string(data)
		}
		fmt.Fprintln(cmd.OutOrStdout(), amount.FormatTotal(amount.CalculateTotal(text)))
		return nil
	},
}
