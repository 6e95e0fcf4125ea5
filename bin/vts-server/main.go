package main

// This file launches a timestamping server. Most of the work is being done in
// 'NewVTSServer()', the main purpose of this file is to set up OS related
// tasks such as picking the homedir for the server, loading the environment
// and listening for quit signals from the OS.

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/glowlabs-org/vts/server"
	"github.com/glowlabs-org/vts/vts"
)

// main is the entry point of the application.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Unable to launch vts server:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dir string
	var configPath string
	var envFiles []string

	cmd := &cobra.Command{
		Use:           "vts-server",
		Short:         "Run the verifiable timestamping server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Missing env files are fine, the process environment
			// still applies.
			for _, f := range envFiles {
				if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("loading %s: %w", f, err)
				}
			}

			if dir == "" {
				homeDir, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("obtaining home directory: %w", err)
				}
				dir = filepath.Join(homeDir, "vts-server")
			}

			cfg, err := server.LoadConfig(dir, configPath)
			if err != nil {
				return err
			}
			vs, err := server.NewVTSServer(cfg)
			if errors.Is(err, vts.ErrStorage) {
				return fmt.Errorf("key store in %s is unusable, refusing to start: %w", dir, err)
			}
			if err != nil {
				return err
			}
			fmt.Printf("vts server listening on port %d\n", vs.Ports())
			fmt.Printf("  Base dir:   %s\n", vs.BaseDir())
			fmt.Printf("  Public key: %s\n", vs.PublicKey())

			// Block until an Interrupt or SIGTERM signal arrives,
			// then close the server.
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			<-c
			fmt.Println()
			return vs.Close()
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "base directory for keys, logs and config (default ~/vts-server)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file path (default <dir>/vts.yaml if present)")
	cmd.Flags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv file(s) to load before reading config")
	return cmd
}
