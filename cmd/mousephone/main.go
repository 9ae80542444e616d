package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := submain(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func submain(ctx context.Context, args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mousephone: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	root := &cobra.Command{
		Use:           "mousephone",
		Short:         "Drive a remote pointer over a websocket from the terminal",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags)
		},
	}
	flags.register(root)

	root.AddCommand(newValidateCmd())
	root.AddCommand(newClickCmd(&flags))
	root.AddCommand(newMoveCmd(&flags))

	return root
}
