package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/glowlabs-org/vts/client"
)

// EnvServer names the default server when --server is not given.
const EnvServer = "VTS_SERVER"

const defaultServer = "http://127.0.0.1:8008"

type rootOptions struct {
	server  string
	timeout time.Duration
}

// NewRoot builds the vts-cli command tree.
func NewRoot() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "vts-cli",
		Short:         "Client for the verifiable timestamping service",
		Long:          "vts-cli fetches the server key, requests signed timestamps and verifies receipts offline.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv(EnvServer)
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&opts.server, "server", server, "server address (env "+EnvServer+")")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout for each server request")

	root.AddCommand(
		newKeyCmd(opts),
		newSignCmd(opts),
		newVerifyCmd(),
		newKeygenCmd(),
	)
	return root
}

func (o *rootOptions) client() *client.Client {
	return client.New(o.server)
}

func (o *rootOptions) context(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, o.timeout)
}
