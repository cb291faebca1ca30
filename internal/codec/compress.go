package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/kloir-z/gantt/internal/domain"
)

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("codec: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("codec: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress returns the zstd frame for data.
func Compress(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, nil)
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}

// PackSnapshot encodes and compresses s for storage.
func PackSnapshot(s domain.Snapshot) ([]byte, error) {
	data, err := EncodeSnapshot(s)
	if err != nil {
		return nil, err
	}
	return Compress(data), nil
}

// UnpackSnapshot reverses PackSnapshot.
func UnpackSnapshot(blob []byte) (domain.Snapshot, error) {
	data, err := Decompress(blob)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return DecodeSnapshot(data)
}
