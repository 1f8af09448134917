package blendspace

import "fmt"

// SyncMode controls how children are timed relative to each other.
type SyncMode int

const (
	// SyncAbsolute samples every child at the incoming time.
	SyncAbsolute SyncMode = iota
	// SyncNormalized samples every child at the same fraction of its own
	// duration, so clips of different lengths stay in phase.
	SyncNormalized
)

func (m SyncMode) String() string {
	switch m {
	case SyncAbsolute:
		return "absolute"
	case SyncNormalized:
		return "normalized"
	}
	return fmt.Sprintf("SyncMode(%d)", int(m))
}

// ParseSyncMode maps a configuration name to a SyncMode.
func ParseSyncMode(s string) (SyncMode, error) {
	switch s {
	case "", "absolute":
		return SyncAbsolute, nil
	case "normalized":
		return SyncNormalized, nil
	}
	return 0, fmt.Errorf("unknown sync mode %q", s)
}
