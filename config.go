package stowaway

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// MetadataCapacity is the fixed number of bits a PDF carrier accepts.
const MetadataCapacity = 65536

// Config selects the envelope and carrier behavior of a Codec.
type Config struct {
	Cipher        CipherAlgo  `yaml:"cipher" json:"cipher"`
	Framing       FramingMode `yaml:"framing" json:"framing"`
	Compression   Compression `yaml:"compression" json:"compression"`
	AgeWorkFactor int         `yaml:"age_work_factor" json:"age_work_factor"`
	Audio         AudioConfig `yaml:"audio" json:"audio"`
	PDF           PDFConfig   `yaml:"pdf" json:"pdf"`
}

// AudioConfig configures the PCM carrier.
type AudioConfig struct {
	Mode AudioMode `yaml:"mode" json:"mode"`
}

// PDFConfig configures the metadata carrier.
type PDFConfig struct {
	Strategies []StrategyName `yaml:"strategies" json:"strategies"`
	Capacity   int            `yaml:"capacity" json:"capacity"`
}

// DefaultConfig returns the canonical configuration. Tokens it produces
// are readable by any Fernet implementation keyed with DeriveKey.
func DefaultConfig() Config {
	return Config{
		Cipher:        CipherFernet,
		Framing:       FramingDelimiter,
		Compression:   CompressionNone,
		AgeWorkFactor: DefaultAgeWorkFactor,
		Audio:         AudioConfig{Mode: AudioSample},
		PDF: PDFConfig{
			Strategies: []StrategyName{StrategyPrimary, StrategyAlternate, StrategySimple},
			Capacity:   MetadataCapacity,
		},
	}
}

// Validate checks every enumerated field against its allowed set.
func (c Config) Validate() error {
	if !IsValidCipherAlgo(c.Cipher) {
		return newConfigError("cipher", string(c.Cipher))
	}
	if !IsValidFramingMode(c.Framing) {
		return newConfigError("framing", string(c.Framing))
	}
	if !IsValidCompression(c.Compression) {
		return newConfigError("compression", string(c.Compression))
	}
	if c.AgeWorkFactor < 1 || c.AgeWorkFactor > 30 {
		return newConfigError("age_work_factor", fmt.Sprint(c.AgeWorkFactor))
	}
	if !IsValidAudioMode(c.Audio.Mode) {
		return newConfigError("audio.mode", string(c.Audio.Mode))
	}
	if len(c.PDF.Strategies) == 0 {
		return newConfigError("pdf.strategies", "")
	}
	seen := make(map[StrategyName]bool, len(c.PDF.Strategies))
	for _, s := range c.PDF.Strategies {
		if !IsValidStrategyName(s) || seen[s] {
			return newConfigError("pdf.strategies", string(s))
		}
		seen[s] = true
	}
	if c.PDF.Capacity <= 0 {
		return newConfigError("pdf.capacity", fmt.Sprint(c.PDF.Capacity))
	}
	return nil
}

// EnvelopeOptions returns the envelope options implied by c.
func (c Config) EnvelopeOptions() []EnvelopeOption {
	return []EnvelopeOption{
		WithCipher(c.Cipher),
		WithFraming(c.Framing),
		WithCompression(c.Compression),
		WithAgeWorkFactor(c.AgeWorkFactor),
	}
}

// LoadConfig reads a YAML (.yaml, .yml) or JSON-with-comments (.json, .jsonc)
// file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data, filepath.Ext(path))
}

// ParseConfig decodes data according to ext over DefaultConfig and
// validates the result.
func ParseConfig(data []byte, ext string) (Config, error) {
	cfg := DefaultConfig()

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parsing yaml: %w", ErrInvalidConfig, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parsing json: %w", ErrInvalidConfig, err)
		}
	default:
		return Config{}, &ConfigError{Err: ErrInvalidConfig, Field: "format", Value: ext}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
