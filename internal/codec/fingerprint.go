package codec

import (
	"encoding/hex"

	"github.com/kloir-z/gantt/internal/domain"
	"github.com/zeebo/blake3"
)

// Fingerprint identifies a snapshot's content.
type Fingerprint [32]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:8])
}

// SnapshotFingerprint hashes the deterministic encoding of s.
func SnapshotFingerprint(s domain.Snapshot) (Fingerprint, error) {
	data, err := EncodeSnapshot(s)
	if err != nil {
		return Fingerprint{}, err
	}
	return blake3.Sum256(data), nil
}
