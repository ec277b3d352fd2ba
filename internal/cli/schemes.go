package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var schemesJSON bool

// schemesCmd represents the schemes command
var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "View the financial assistance scheme catalog",
	Long: `View the scheme table and the category mapping the identifier uses.

Example:
  schemeqa schemes list
  schemeqa schemes show "Tuition Fee Loan"
  schemeqa schemes categories`,
}

var schemesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all schemes with their details",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cat, err := loadCatalogOnly()
		if err != nil {
			return err
		}

		schemes := cat.Schemes()
		if schemesJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(schemes)
		}
		renderDetails(cmd.OutOrStdout(), schemes)
		fmt.Fprintf(cmd.ErrOrStderr(), "%d schemes\n", len(schemes))
		return nil
	},
}

var schemesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the details of one scheme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cat, err := loadCatalogOnly()
		if err != nil {
			return err
		}

		rec, ok := cat.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown scheme %q (see 'schemeqa schemes list')", args[0])
		}
		if schemesJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}
		renderRecord(cmd.OutOrStdout(), rec)
		return nil
	},
}

var schemesCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show the category to scheme mapping",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cat, err := loadCatalogOnly()
		if err != nil {
			return err
		}

		index := cat.Categories()
		if schemesJSON {
			out, err := index.PromptJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
		renderCategories(cmd.OutOrStdout(), index, cat.Lookup)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemesCmd)
	schemesCmd.AddCommand(schemesListCmd)
	schemesCmd.AddCommand(schemesShowCmd)
	schemesCmd.AddCommand(schemesCategoriesCmd)

	schemesCmd.PersistentFlags().BoolVar(&schemesJSON, "json", false, "print JSON instead of tables")
}
