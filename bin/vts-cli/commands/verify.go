package commands

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glowlabs-org/vts/client"
	"github.com/glowlabs-org/vts/vts"
)

// errNotVerified is returned when a receipt is well formed but does not
// verify, so that the process exits non-zero.
var errNotVerified = errors.New("signature is NOT valid")

func newVerifyCmd() *cobra.Command {
	var receiptPath string
	var keyPath string
	var publicKey string
	var sigFile string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a receipt offline against a public key",
		Example: `  vts-cli verify --receipt receipt.json --key server-key.json
  vts-cli verify --receipt receipt.json --public-key A0b2...= --sig-file hello.sig`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if receiptPath == "" {
				return errors.New("--receipt is required")
			}
			if (keyPath == "") == (publicKey == "") {
				return errors.New("exactly one of --key or --public-key is required")
			}

			st, err := client.LoadReceipt(receiptPath)
			if err != nil {
				return err
			}
			vk := client.VerificationKey{PublicKey: publicKey}
			if keyPath != "" {
				vk, err = client.LoadKey(keyPath)
				if err != nil {
					return err
				}
			}
			if sigFile != "" {
				sig, err := vts.ReadSignatureFile(sigFile)
				if err != nil {
					return err
				}
				st.Signature = base64.StdEncoding.EncodeToString(sig[:])
			}

			w := cmd.OutOrStdout()
			if err := client.CheckSignature(st, vk); err != nil {
				if errors.Is(err, vts.ErrInvalidSignature) {
					return errNotVerified
				}
				return fmt.Errorf("%w: %v", errNotVerified, err)
			}
			fmt.Fprintf(w, "Signature is valid\n")
			fmt.Fprintf(w, "  Message:     %s\n", st.Message)
			fmt.Fprintf(w, "  Time signed: %s\n", st.TimeSigned)
			return nil
		},
	}

	cmd.Flags().StringVar(&receiptPath, "receipt", "", "receipt file written by 'sign --out'")
	cmd.Flags().StringVar(&keyPath, "key", "", "key file written by 'key --out'")
	cmd.Flags().StringVar(&publicKey, "public-key", "", "base64 public key")
	cmd.Flags().StringVar(&sigFile, "sig-file", "", "raw signature file that replaces the receipt signature")
	return cmd
}
