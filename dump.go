package annotrack

import (
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
)

var (
	dumpEnc cbor.EncMode
	dumpDec cbor.DecMode
)

func init() {
	var err error

	// deterministic encoding so the same sessions always produce the same
	// bytes
	dumpEnc, err = cbor.CoreDetEncOptions().EncMode()

	if err != nil {
		panic(fmt.Sprintf("cbor encoder options: %v", err))
	}

	dumpDec, err = cbor.DecOptions{}.DecMode()

	if err != nil {
		panic(fmt.Sprintf("cbor decoder options: %v", err))
	}
}

// SaveSessions writes the raw sessions to w as CBOR
func SaveSessions(w io.Writer, sessions []Session) error {

	if sessions == nil {
		sessions = []Session{}
	}

	if err := dumpEnc.NewEncoder(w).Encode(sessions); err != nil {
		return fmt.Errorf("error encoding sessions: %w", err)
	}

	return nil
}

// LoadSessions reads raw sessions written by SaveSessions
func LoadSessions(r io.Reader) ([]Session, error) {

	var sessions []Session

	if err := dumpDec.NewDecoder(r).Decode(&sessions); err != nil {
		return nil, fmt.Errorf("error decoding sessions: %w", err)
	}

	return sessions, nil
}

// WriteDumpFile writes the raw sessions to the given file
func WriteDumpFile(file string, sessions []Session) error {

	f, err := os.Create(file)

	if err != nil {
		return fmt.Errorf("error creating dump file: %w", err)
	}

	if err := SaveSessions(f, sessions); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// ReadDumpFile reads raw sessions from the given file
func ReadDumpFile(file string) ([]Session, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening dump file: %w", err)
	}

	defer f.Close()

	return LoadSessions(f)
}
