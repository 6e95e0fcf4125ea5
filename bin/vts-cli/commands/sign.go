package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glowlabs-org/vts/client"
	"github.com/glowlabs-org/vts/vts"
)

func newSignCmd(opts *rootOptions) *cobra.Command {
	var out string
	var sigFile string
	var verify bool

	cmd := &cobra.Command{
		Use:   "sign MESSAGE",
		Short: "Request a signed timestamp for a message",
		Example: `  vts-cli sign "hello world"
  vts-cli sign "hello world" --out receipt.json --sig-file hello.sig --verify`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			c := opts.client()
			st, err := c.RequestTimestamp(ctx, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Message:     %s\n", st.Message)
			fmt.Fprintf(w, "Time signed: %s\n", st.TimeSigned)
			fmt.Fprintf(w, "Signature:   %s\n", st.Signature)

			if out != "" {
				if err := client.SaveReceipt(out, st); err != nil {
					return err
				}
				fmt.Fprintf(w, "Saved receipt to %s\n", out)
			}
			if sigFile != "" {
				sig, err := client.DecodeSignature(st)
				if err != nil {
					return err
				}
				if err := vts.WriteSignatureFile(sigFile, sig); err != nil {
					return err
				}
				fmt.Fprintf(w, "Saved signature to %s\n", sigFile)
			}

			if verify {
				vk, err := c.RequestKey(ctx)
				if err != nil {
					return err
				}
				if !client.VerifySignature(st, vk) {
					return errors.New("signature returned by the server does not verify")
				}
				fmt.Fprintln(w, "Signature verified")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "write the receipt to this file")
	cmd.Flags().StringVar(&sigFile, "sig-file", "", "write the raw 64 byte signature to this file")
	cmd.Flags().BoolVar(&verify, "verify", false, "fetch the server key and verify the receipt")
	return cmd
}
