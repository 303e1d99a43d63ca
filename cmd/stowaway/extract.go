package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zoobzio/stowaway/report"
)

func newExtractCmd(opts *options) *cobra.Command {
	var (
		password string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "extract <carrier>",
		Short: "Recover a hidden message from a carrier file",
		Example: `  stowaway extract hidden_data.png -p secret
  stowaway extract hidden_data.wav -o message.txt
  stowaway extract hidden_data.pdf --format yaml`,
		Args: cobra.ExactArgs(1),
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
			password = passwordOrEnv(password)
			stop := opts.startSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Extracting from %s carrier %s", kind, path))
			payload, err := codec.Extract(cmd.Context(), kind, carrier, password)
			stop()
			if err != nil {
				return err
			}
			opts.log.Debugf("Recovered %d bytes", len(payload))

			if out != "" {
				if err := os.WriteFile(out, payload, 0o644); err != nil {
					return opts.log.ErrorfAndReturn("writing output: %w", err)
				}
			}

			r := report.Extract(kind, path, len(carrier), payload, password != "")
			return opts.render(cmd.OutOrStdout(), r, func(w io.Writer) {
				if out != "" {
					fmt.Fprintf(w, "%s Wrote %d bytes to %s\n", color.GreenString("✓"), len(payload), out)
					return
				}
				w.Write(payload)
				if len(payload) > 0 && payload[len(payload)-1] != '\n' {
					fmt.Fprintln(w)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "decrypt with this password (default $"+passwordEnv+")")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the message to a file instead of stdout")
	return cmd
}
