package stowaway

// Kind identifies a carrier family.
type Kind string

const (
	// KindImage is a raster image carrier (PNG, JPEG, BMP, TIFF, GIF, WebP).
	KindImage Kind = "image"

	// KindAudio is an uncompressed 16-bit PCM WAV carrier.
	KindAudio Kind = "audio"

	// KindPDF is a PDF document carrier.
	KindPDF Kind = "pdf"
)

// CipherAlgo represents a supported payload cipher.
type CipherAlgo string

const (
	// CipherFernet produces Fernet tokens (AES-128-CBC + HMAC-SHA256).
	// This is the default and the only format readable by older tooling.
	CipherFernet CipherAlgo = "fernet"

	// CipherAESGCM uses AES-256-GCM with a random nonce prefix.
	CipherAESGCM CipherAlgo = "aes-gcm"

	// CipherXChaCha20 uses XChaCha20-Poly1305 with a random nonce prefix.
	CipherXChaCha20 CipherAlgo = "xchacha20"

	// CipherAge uses age scrypt passphrase encryption.
	CipherAge CipherAlgo = "age"
)

// FramingMode selects how payload bits are terminated inside a bit carrier.
type FramingMode string

const (
	// FramingDelimiter appends the 16-bit end marker 1111111111111110.
	FramingDelimiter FramingMode = "delimiter"

	// FramingLengthPrefixed writes a sync word and a 32-bit byte length
	// before the payload.
	FramingLengthPrefixed FramingMode = "length-prefixed"
)

// AudioMode selects which byte of a PCM sample carries the hidden bit.
type AudioMode string

const (
	// AudioSample toggles bit 0 of the sample's numeric value.
	AudioSample AudioMode = "sample"

	// AudioByte toggles bit 0 of the first encoded byte of each sample.
	AudioByte AudioMode = "byte"
)

// Compression represents a payload compression scheme applied before sealing.
type Compression string

const (
	// CompressionNone leaves the payload as-is.
	CompressionNone Compression = "none"

	// CompressionZstd compresses the payload with zstd.
	CompressionZstd Compression = "zstd"
)

// StrategyName names a metadata field strategy.
type StrategyName string

const (
	// StrategyPrimary writes the Subject field through a strictly located trailer.
	StrategyPrimary StrategyName = "primary"

	// StrategyAlternate writes a fresh Info object through a leniently located trailer.
	StrategyAlternate StrategyName = "alternate"

	// StrategySimple writes the Keywords field after repairing the trailer.
	StrategySimple StrategyName = "simple"
)

var validKinds = map[Kind]bool{
	KindImage: true,
	KindAudio: true,
	KindPDF:   true,
}

var validCipherAlgos = map[CipherAlgo]bool{
	CipherFernet:    true,
	CipherAESGCM:    true,
	CipherXChaCha20: true,
	CipherAge:       true,
}

var validFramingModes = map[FramingMode]bool{
	FramingDelimiter:      true,
	FramingLengthPrefixed: true,
}

var validAudioModes = map[AudioMode]bool{
	AudioSample: true,
	AudioByte:   true,
}

var validCompressions = map[Compression]bool{
	CompressionNone: true,
	CompressionZstd: true,
}

var validStrategyNames = map[StrategyName]bool{
	StrategyPrimary:   true,
	StrategyAlternate: true,
	StrategySimple:    true,
}

// IsValidKind returns true if the kind is a known carrier family.
func IsValidKind(k Kind) bool {
	return validKinds[k]
}

// IsValidCipherAlgo returns true if the algorithm is a known cipher.
func IsValidCipherAlgo(algo CipherAlgo) bool {
	return validCipherAlgos[algo]
}

// IsValidFramingMode returns true if the mode is a known framing.
func IsValidFramingMode(m FramingMode) bool {
	return validFramingModes[m]
}

// IsValidAudioMode returns true if the mode is a known audio addressing mode.
func IsValidAudioMode(m AudioMode) bool {
	return validAudioModes[m]
}

// IsValidCompression returns true if the scheme is a known compression.
func IsValidCompression(c Compression) bool {
	return validCompressions[c]
}

// IsValidStrategyName returns true if the name is a known metadata strategy.
func IsValidStrategyName(n StrategyName) bool {
	return validStrategyNames[n]
}

// ParseKind converts a free-form kind string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !IsValidKind(k) {
		return "", &ConfigError{Err: ErrUnsupportedCarrier, Field: "kind", Value: s}
	}
	return k, nil
}
