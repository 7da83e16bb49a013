package ports

import (
	"context"

	"scfscan/domain/qrng"
)

// BitSource yields a validated QRNG bit sequence with its provenance
// manifest. File-backed captures implement this directly; network fetchers
// (public QRNG APIs) are external collaborators behind the same interface,
// and any retry, backoff, or rate-limit sleeping is theirs to handle, never
// the core's.
type BitSource interface {
	Name() string
	Bits(ctx context.Context) ([]qrng.Bit, *qrng.Manifest, error)
}
