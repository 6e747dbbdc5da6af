// Command rfsclient is a thin smoke-test client for rfsserver: it opens a
// remote file, reads it, and prints the bytes. It is not part of the
// transport/codec core and exercises no testable property on its own.
package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"code.duskforge.dev/rfscall/client"
	"code.duskforge.dev/rfscall/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var addr string
	var count int

	cmd := &cobra.Command{
		Use:   "rfsclient <path>",
		Short: "Open and read a remote file through rfsserver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			c, err := client.Dial(addr)
			if err != nil {
				return err
			}
			defer c.Disconnect()

			fd, err := c.Open(path, syscall.O_RDONLY, 0)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer c.Close(fd)

			buf := make([]byte, count)
			n, err := c.Read(fd, buf, count)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			os.Stdout.Write(buf[:n])
			return nil
		},
	}

	defaults := config.FromEnv()
	cmd.Flags().StringVar(&addr, "addr", defaults.Addr(), "rfsserver address (overrides server15440/serverport15440)")
	cmd.Flags().IntVar(&count, "count", 4096, "bytes to read")

	return cmd
}
