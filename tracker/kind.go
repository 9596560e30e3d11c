package tracker

import (
	"fmt"
	"strings"
)

// Kind is the name of a single object tracking algorithm
type Kind string

const (
	Boosting   Kind = "BOOSTING"
	MIL        Kind = "MIL"
	KCF        Kind = "KCF"
	TLD        Kind = "TLD"
	MedianFlow Kind = "MEDIANFLOW"
	GOTURN     Kind = "GOTURN"
	MOSSE      Kind = "MOSSE"
	CSRT       Kind = "CSRT"
)

// kinds lists the supported algorithms in the order they are reported to
// the user
var kinds = []Kind{Boosting, MIL, KCF, TLD, MedianFlow, GOTURN, MOSSE, CSRT}

// Kinds returns all supported tracker kinds
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// KindNames returns the names of all supported tracker kinds
func KindNames() []string {
	names := make([]string, len(kinds))

	for i, k := range kinds {
		names[i] = string(k)
	}

	return names
}

// ParseKind returns the Kind matching name.  Names are case sensitive.
func ParseKind(name string) (Kind, error) {

	for _, k := range kinds {
		if string(k) == name {
			return k, nil
		}
	}

	return "", &UnsupportedKindError{Name: name}
}

// UnsupportedKindError is returned when a tracker name is not one of the
// supported kinds
type UnsupportedKindError struct {
	Name string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("incorrect tracker name %q, available trackers are: %s",
		e.Name, strings.Join(KindNames(), ", "))
}
