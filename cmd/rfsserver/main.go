// Command rfsserver runs the dispatcher side of the remote file-call relay.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"code.duskforge.dev/rfscall/internal/config"
	"code.duskforge.dev/rfscall/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var host, port, logLevel string

	cmd := &cobra.Command{
		Use:   "rfsserver",
		Short: "Serve remote file-call requests over TCP",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
			}
			log := logrus.New()
			log.SetLevel(level)

			addr := net.JoinHostPort(host, port)
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			log.WithField("addr", addr).Info("listening")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := server.New(server.WithLogger(log))
			err = s.Serve(ctx, ln)
			if ctx.Err() != nil {
				log.Info("shutting down")
				return nil
			}
			return err
		},
	}

	defaults := config.FromEnv()
	cmd.Flags().StringVar(&host, "host", defaults.Host, "address to listen on (overrides server15440)")
	cmd.Flags().StringVar(&port, "port", defaults.Port, "port to listen on (overrides serverport15440)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "logrus level: trace,debug,info,warn,error")

	return cmd
}
