package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/kloir-z/gantt/internal/domain"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v with Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v. Unknown fields are ignored.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// snapshotWire is the stored shape of a Snapshot. Rows reuse the file
// format's flat record so one conversion serves both.
type snapshotWire struct {
	Rows    []domain.RowRecord `cbor:"rows"`
	Columns []domain.Column    `cbor:"columns"`
}

// EncodeSnapshot encodes s deterministically.
func EncodeSnapshot(s domain.Snapshot) ([]byte, error) {
	w := snapshotWire{Columns: s.Columns}
	if s.Document != nil {
		w.Rows = domain.Records(s.Document)
	}
	data, err := Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot is the inverse of EncodeSnapshot.
func DecodeSnapshot(data []byte) (domain.Snapshot, error) {
	var w snapshotWire
	if err := Unmarshal(data, &w); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	doc, err := domain.DocumentFromRecords(w.Rows)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return domain.Snapshot{Document: doc, Columns: w.Columns}, nil
}

// EncodeSettings encodes chart settings deterministically.
func EncodeSettings(s domain.Settings) ([]byte, error) {
	data, err := Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return data, nil
}

// DecodeSettings is the inverse of EncodeSettings.
func DecodeSettings(data []byte) (domain.Settings, error) {
	var s domain.Settings
	if err := Unmarshal(data, &s); err != nil {
		return domain.Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return s, nil
}
