package commands

import (
	"encoding/base64"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glowlabs-org/vts/vts"
)

func newKeygenCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create the server key pair in a directory, or show the existing one",
		Example: `  vts-cli keygen --dir ~/vts-server`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ks := vts.NewKeyStoreInDir(outDir)
			kp, generated, err := ks.LoadOrGenerateReport()
			if err != nil {
				return fmt.Errorf("loading key pair in %s: %w", outDir, err)
			}
			priv, pub := ks.Paths()
			pk := kp.PublicKey()

			w := cmd.OutOrStdout()
			if generated {
				fmt.Fprintln(w, "Generated new key pair")
			} else {
				fmt.Fprintln(w, "Key pair already exists")
			}
			fmt.Fprintf(w, "  Private: %s\n", filepath.Clean(priv))
			fmt.Fprintf(w, "  Public:  %s\n", filepath.Clean(pub))
			fmt.Fprintf(w, "  Public key: %s\n", base64.StdEncoding.EncodeToString(pk[:]))
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "dir", ".", "directory holding private_key.bin and public_key.bin")
	return cmd
}
