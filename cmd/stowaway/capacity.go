package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zoobzio/stowaway/report"
)

func newCapacityCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "capacity <carrier>",
		Short: "Show how much data a carrier file can hold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			kind, err := opts.resolveKind(path)
			if err != nil {
				return err
			}

			carrier, err := os.ReadFile(path)
			if err != nil {
				return opts.log.ErrorfAndReturn("reading carrier: %w", err)
			}

			codec, err := opts.codec()
			if err != nil {
				return err
			}
			bits, err := codec.Capacity(cmd.Context(), kind, carrier)
			if err != nil {
				return err
			}

			r := report.Capacity(kind, path, len(carrier), bits)
			return opts.render(cmd.OutOrStdout(), r, func(w io.Writer) {
				fmt.Fprintf(w, "%d bits (%d bytes)\n", r.CapacityBits, r.CapacityBytes)
			})
		},
	}
}
