package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glowlabs-org/vts/client"
)

func newKeyCmd(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "key",
		Short: "Fetch the server's public key",
		Example: `  vts-cli key
  vts-cli key --out server-key.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			vk, err := opts.client().RequestKey(ctx)
			if err != nil {
				return err
			}
			if _, err := client.DecodePublicKey(vk); err != nil {
				return fmt.Errorf("server sent an unusable key: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Public key:     %s\n", vk.PublicKey)
			fmt.Fprintf(w, "Time requested: %s\n", vk.TimeRequested)
			if out != "" {
				if err := client.SaveKey(out, vk); err != nil {
					return err
				}
				fmt.Fprintf(w, "Saved key to %s\n", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "write the key envelope to this file")
	return cmd
}
