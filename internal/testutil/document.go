package testutil

import "wds-go/internal/wds"

// StubDocument is a trivial wds.Document whose snapshot is a raw byte
// slice. Tests mutate State and Ver directly between updates.
type StubDocument struct {
	State []byte
	Ver   uint64
}

var _ wds.Document = (*StubDocument)(nil)

func (d *StubDocument) ExportSnapshot() ([]byte, error) {
	out := make([]byte, len(d.State))
	copy(out, d.State)
	return out, nil
}

func (d *StubDocument) ImportSnapshot(data []byte) error {
	d.State = make([]byte, len(data))
	copy(d.State, data)
	return nil
}

func (d *StubDocument) Version() uint64 { return d.Ver }
