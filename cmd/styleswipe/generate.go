package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tair/styleswipe/internal/storage"
)

func (c *cli) generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <user_folder>",
		Short: "Render try-on images for every product in a user's deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := storage.CleanFolder(args[0])
			if err != nil {
				return err
			}

			a, cleanup, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if !a.Generator.Enabled() {
				return fmt.Errorf("IMAGE_API_KEY is not set")
			}
			written, err := a.Generator.GenerateAll(cmd.Context(), folder)
			if err != nil {
				return err
			}
			for id, paths := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "product %d: %d images\n", id, len(paths))
			}
			return nil
		},
	}
}
