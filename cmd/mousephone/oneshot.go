package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mousephone/client/internal/address"
	"github.com/mousephone/client/internal/observe"
	"github.com/mousephone/client/internal/protocol"
	"github.com/mousephone/client/internal/session"
)

func newClickCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "click left|right",
		Short:     "Connect, send one click and disconnect",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"left", "right"},
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := protocol.ParseButton(args[0])
			if err != nil {
				return err
			}
			return sendOnce(cmd, *f, protocol.Click{Button: b})
		},
	}
}

func newMoveCmd(f *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move DX DY",
		Short: "Connect, send one relative movement and disconnect",
		Long: "Connect, send one relative movement and disconnect.\n\n" +
			"Negative deltas need a -- separator: mousephone move -- -10 5",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			move, err := parseMove(args[0], args[1])
			if err != nil {
				return err
			}
			return sendOnce(cmd, *f, move)
		},
	}
	return cmd
}

func parseMove(dx, dy string) (protocol.Move, error) {
	x, err := strconv.ParseFloat(dx, 64)
	if err != nil {
		return protocol.Move{}, fmt.Errorf("dx: %w", err)
	}
	y, err := strconv.ParseFloat(dy, 64)
	if err != nil {
		return protocol.Move{}, fmt.Errorf("dy: %w", err)
	}
	return protocol.Move{DX: x, DY: y}, nil
}

func sendOnce(cmd *cobra.Command, f globalFlags, msg protocol.Message) error {
	e, err := newEngine(cmd, f, true)
	if err != nil {
		return err
	}
	defer e.Close()

	host, port := e.cfg.Server.Host, e.cfg.Server.Port
	wait := e.cfg.Transport.ConnectTimeout + e.cfg.Transport.CloseTimeout
	if err := deliver(cmd.Context(), e.channel, host, port, msg, wait); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "sent %s to %s:%s\n", msg.Type(), host, port)
	return err
}

// deliver opens a session on ch, writes msg once it is connected, then
// closes normally and waits for the session to end. Each wait is bounded
// by timeout.
func deliver(ctx context.Context, ch *session.Channel, host, port string, msg protocol.Message, timeout time.Duration) error {
	if r := address.Validate(host, port); !r.Submittable {
		return fmt.Errorf("invalid target %q:%q: %s", host, port, resultError(r))
	}

	sub := ch.Subscribe()
	defer sub.Close()

	ch.Connect(host, port)
	st, err := waitFor(ctx, sub, timeout, func(s session.State) bool {
		return s.Kind == session.Connected || s.IsTerminal()
	})
	if err != nil {
		return fmt.Errorf("connect %s:%s: %w", host, port, err)
	}
	if st.Kind != session.Connected {
		return fmt.Errorf("connect %s:%s: %s", host, port, st)
	}

	_, before := ch.Stats()
	ch.Send(msg)
	if _, after := ch.Stats(); after > before {
		ch.Disconnect()
		return fmt.Errorf("%s was not sent", msg.Type())
	}

	ch.Disconnect()
	if _, err := waitFor(ctx, sub, timeout, session.State.IsTerminal); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

func waitFor(ctx context.Context, sub *observe.Subscription[session.State], timeout time.Duration, done func(session.State) bool) (session.State, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return session.State{}, ctx.Err()
		case <-timer.C:
			return session.State{}, fmt.Errorf("timed out after %s", timeout)
		case st, ok := <-sub.C():
			if !ok {
				return st, errors.New("session closed")
			}
			if done(st) {
				return st, nil
			}
		}
	}
}

func resultError(r address.Result) string {
	if r.HostError != "" {
		return r.HostError
	}
	return r.PortError
}
