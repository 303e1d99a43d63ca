package stowaway

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// maxDecompressed bounds zstd window memory on extraction.
const maxDecompressed = 64 << 20

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdInit    sync.Once
	zstdInitErr error
)

func initZstd() error {
	zstdInit.Do(func() {
		zstdEncoder, zstdInitErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if zstdInitErr != nil {
			return
		}
		zstdDecoder, zstdInitErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecompressed))
	})
	return zstdInitErr
}

// compress applies c to data.
func compress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone, "":
		return data, nil
	case CompressionZstd:
		if err := initZstd(); err != nil {
			return nil, err
		}
		return zstdEncoder.EncodeAll(data, nil), nil
	default:
		return nil, newConfigError("compression", string(c))
	}
}

// decompress reverses compress. Malformed input wraps ErrCorruptPayload.
func decompress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone, "":
		return data, nil
	case CompressionZstd:
		if err := initZstd(); err != nil {
			return nil, err
		}
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptPayload, err)
		}
		return out, nil
	default:
		return nil, newConfigError("compression", string(c))
	}
}
