package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/zoobzio/stowaway"
	"github.com/zoobzio/stowaway/internal/logging"
	"github.com/zoobzio/stowaway/pcm"
	"github.com/zoobzio/stowaway/pdf"
	"github.com/zoobzio/stowaway/raster"
	"github.com/zoobzio/stowaway/report"
)

// passwordEnv is read when --password is not given.
const passwordEnv = "STOWAWAY_PASSWORD"

// extensionKinds maps carrier file extensions to kinds.
var extensionKinds = map[string]stowaway.Kind{
	".png":  stowaway.KindImage,
	".jpg":  stowaway.KindImage,
	".jpeg": stowaway.KindImage,
	".bmp":  stowaway.KindImage,
	".tif":  stowaway.KindImage,
	".tiff": stowaway.KindImage,
	".gif":  stowaway.KindImage,
	".webp": stowaway.KindImage,
	".wav":  stowaway.KindAudio,
	".pdf":  stowaway.KindPDF,
}

// outputExtensions is the file extension each kind writes.
var outputExtensions = map[stowaway.Kind]string{
	stowaway.KindImage: "png",
	stowaway.KindAudio: "wav",
	stowaway.KindPDF:   "pdf",
}

// options holds the persistent flags and the state derived from them.
type options struct {
	configPath  string
	verbose     bool
	debug       bool
	kind        string
	format      string
	cipher      string
	framing     string
	compression string
	audioMode   string

	log logging.Logger
	cfg stowaway.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "stowaway",
		Short: "Hide text inside images, audio and PDF files",
		Long: `Stowaway hides a message inside an ordinary file and gets it back out.

Carriers:
  png jpg jpeg bmp tif tiff gif webp   least significant bits of RGB pixels, written as PNG
  wav                                  least significant bit of each 16-bit PCM sample
  pdf                                  document information metadata

With a password the message is encrypted before it is hidden.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.log = logging.Logger{
				Verbose: opts.verbose,
				Debug:   opts.debug,
				Out:     cmd.ErrOrStderr(),
				Err:     cmd.ErrOrStderr(),
			}
			opts.log.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.Name(), opts.verbose, opts.debug)
			return opts.load(cmd.Flags())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (.yaml, .yml, .json, .jsonc)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "enable debug output")
	flags.StringVarP(&opts.kind, "kind", "k", "", "carrier kind (image, audio, pdf); inferred from the extension by default")
	flags.StringVarP(&opts.format, "format", "f", "", "report format ("+joinFormats()+"); human-readable by default")
	flags.StringVar(&opts.cipher, "cipher", "", "cipher used with a password (fernet, aes-gcm, xchacha20, age)")
	flags.StringVar(&opts.framing, "framing", "", "bit framing (delimiter, length-prefixed)")
	flags.StringVar(&opts.compression, "compression", "", "payload compression (none, zstd)")
	flags.StringVar(&opts.audioMode, "audio-mode", "", "audio bit addressing (sample, byte)")

	root.AddCommand(newHideCmd(opts), newExtractCmd(opts), newCapacityCmd(opts))
	return root
}

func joinFormats() string {
	formats := report.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// load builds the effective configuration: defaults, then the config
// file, then any flags that were set.
func (o *options) load(flags *pflag.FlagSet) error {
	cfg := stowaway.DefaultConfig()
	if o.configPath != "" {
		o.log.Debugf("Loading config from %s", o.configPath)
		loaded, err := stowaway.LoadConfig(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if flags.Changed("cipher") {
		cfg.Cipher = stowaway.CipherAlgo(o.cipher)
	}
	if flags.Changed("framing") {
		cfg.Framing = stowaway.FramingMode(o.framing)
	}
	if flags.Changed("compression") {
		cfg.Compression = stowaway.Compression(o.compression)
	}
	if flags.Changed("audio-mode") {
		cfg.Audio.Mode = stowaway.AudioMode(o.audioMode)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if o.format != "" {
		if _, err := report.CodecFor(report.Format(o.format)); err != nil {
			return err
		}
	}

	o.cfg = cfg
	o.log.Debugf("Config: cipher=%s framing=%s compression=%s audio=%s pdf=%v",
		cfg.Cipher, cfg.Framing, cfg.Compression, cfg.Audio.Mode, cfg.PDF.Strategies)
	return nil
}

func (o *options) codec() (*stowaway.Codec, error) {
	return stowaway.New(o.cfg,
		raster.New(),
		pcm.New(pcm.WithMode(o.cfg.Audio.Mode)),
		pdf.FromConfig(o.cfg.PDF),
	)
}

// resolveKind returns the --kind flag or the kind implied by path.
func (o *options) resolveKind(path string) (stowaway.Kind, error) {
	if o.kind != "" {
		return stowaway.ParseKind(o.kind)
	}
	ext := strings.ToLower(filepath.Ext(path))
	kind, ok := extensionKinds[ext]
	if !ok {
		return "", fmt.Errorf("%w: cannot infer kind from extension %q; use --kind", stowaway.ErrUnsupportedCarrier, ext)
	}
	return kind, nil
}

// render prints r in the selected report format, or calls human when no
// format was chosen.
func (o *options) render(w io.Writer, r report.Report, human func(io.Writer)) error {
	if o.format == "" {
		human(w)
		return nil
	}

	c, err := report.CodecFor(report.Format(o.format))
	if err != nil {
		return err
	}
	data, err := c.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding %s report: %w", o.format, err)
	}
	if !report.Format(o.format).Binary() {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}

func passwordOrEnv(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(passwordEnv)
}

// defaultOutput returns hidden_data.<ext> next to the carrier.
func defaultOutput(carrierPath string, kind stowaway.Kind) string {
	return filepath.Join(filepath.Dir(carrierPath), "hidden_data."+outputExtensions[kind])
}
