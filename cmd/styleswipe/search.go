package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tair/styleswipe/internal/storage"
)

func (c *cli) searchCmd() *cobra.Command {
	var (
		folder      string
		num         int
		productType string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search shopping results and rebuild a user's deck",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userFolder, err := storage.CleanFolder(folder)
			if err != nil {
				return err
			}
			if num > 0 {
				c.cfg.Search.NumResults = num
			}

			a, cleanup, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := a.Searcher.Search(cmd.Context(), userFolder, strings.Join(args, " "), productType)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		},
	}
	cmd.Flags().StringVar(&folder, "user", "cli", "user folder that receives the deck")
	cmd.Flags().IntVar(&num, "num", 0, "number of products to keep")
	cmd.Flags().StringVar(&productType, "type", "", "clothing type stored on the products")
	return cmd
}
