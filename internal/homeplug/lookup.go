package homeplug

import "fmt"

// LookupStatus is the outcome of probing one device index
type LookupStatus int

const (
	// LookupFound means the index holds a device entry
	LookupFound LookupStatus = iota
	// LookupExhausted means the index is past the last entry
	LookupExhausted
	// LookupFailed means the probe failed for any other reason
	LookupFailed
)

// String returns a lower-case name for the status
func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupExhausted:
		return "exhausted"
	case LookupFailed:
		return "failed"
	default:
		return fmt.Sprintf("LookupStatus(%d)", int(s))
	}
}

// Lookup is the result of probing one index. Record is set only for
// LookupFound and Err only for LookupFailed.
type Lookup struct {
	Status LookupStatus
	Record Record
	Err    error
}

func found(r Record) Lookup {
	return Lookup{Status: LookupFound, Record: r}
}

func exhausted() Lookup {
	return Lookup{Status: LookupExhausted}
}

func failed(err error) Lookup {
	return Lookup{Status: LookupFailed, Err: err}
}
