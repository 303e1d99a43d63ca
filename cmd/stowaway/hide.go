package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zoobzio/stowaway/report"
)

func newHideCmd(opts *options) *cobra.Command {
	var (
		message     string
		messageFile string
		password    string
		out         string
	)

	cmd := &cobra.Command{
		Use:   "hide <carrier>",
		Short: "Hide a message inside a carrier file",
		Example: `  stowaway hide cover.png -m "meet at noon" -p secret
  echo "meet at noon" | stowaway hide song.wav --message-file - -o out.wav
  stowaway hide report.pdf -m "draft 3" --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			kind, err := opts.resolveKind(path)
			if err != nil {
				return err
			}

			payload, err := readMessage(cmd.InOrStdin(), message, messageFile, cmd.Flags().Changed("message"))
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
			stop := opts.startSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Hiding %d bytes in %s carrier %s", len(payload), kind, path))
			stego, err := codec.Hide(cmd.Context(), kind, carrier, payload, password)
			stop()
			if err != nil {
				return err
			}

			if out == "" {
				out = defaultOutput(path, kind)
			}
			if err := os.WriteFile(out, stego, 0o644); err != nil {
				return opts.log.ErrorfAndReturn("writing output: %w", err)
			}
			opts.log.Debugf("Wrote %d bytes to %s", len(stego), out)

			r := report.Hide(kind, path, len(carrier), len(payload), password != "", out)
			return opts.render(cmd.OutOrStdout(), r, func(w io.Writer) {
				fmt.Fprintf(w, "%s Hid %d bytes in %s\n", color.GreenString("✓"), len(payload), out)
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "message to hide")
	cmd.Flags().StringVar(&messageFile, "message-file", "", "read the message from a file (- for stdin)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "encrypt with this password (default $"+passwordEnv+")")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default hidden_data.<ext> beside the carrier)")
	cmd.MarkFlagsMutuallyExclusive("message", "message-file")
	return cmd
}

// readMessage returns the inline message, or the contents of file when
// set. An explicitly empty inline message is allowed.
func readMessage(stdin io.Reader, message, file string, inline bool) ([]byte, error) {
	switch {
	case inline:
		return []byte(message), nil
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading message from stdin: %w", err)
		}
		return data, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading message file: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("no message given; use --message or --message-file")
	}
}
