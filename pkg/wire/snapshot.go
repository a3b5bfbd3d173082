package wire

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/smokesignal/smokesignal/pkg/types"
)

// EncodeSnapshot renders snap in the status.json layout: one object keyed by
// target name, two-space indentation, keys sorted, trailing newline.
func EncodeSnapshot(snap types.Snapshot) ([]byte, error) {
	if snap == nil {
		snap = types.Snapshot{}
	}
	b, err := sonic.ConfigStd.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("wire: encode snapshot: %w", err)
	}
	return append(b, '\n'), nil
}

// DecodeSnapshot parses status.json content and validates every status.
func DecodeSnapshot(data []byte) (types.Snapshot, error) {
	var snap types.Snapshot
	if err := sonic.ConfigStd.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("wire: decode snapshot: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("wire: decode snapshot: document is not an object")
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("wire: decode snapshot: %w", err)
	}
	return snap, nil
}
