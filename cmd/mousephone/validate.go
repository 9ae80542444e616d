package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mousephone/client/internal/address"
)

var errNotSubmittable = errors.New("address is not valid")

func newValidateCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate HOST PORT",
		Short: "Check a host and port the way the connect dialog does",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := address.Validate(args[0], args[1])
			if err := writeResult(cmd.OutOrStdout(), r, asJSON); err != nil {
				return err
			}
			if !r.Submittable {
				return errNotSubmittable
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func writeResult(w io.Writer, r address.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		return enc.Encode(r)
	}
	_, err := fmt.Fprintf(w, "host: %s\nport: %s\n", fieldStatus(r.HostError), fieldStatus(r.PortError))
	return err
}

func fieldStatus(msg string) string {
	if msg == "" {
		return "ok"
	}
	return msg
}
