package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// FileLedger is an append-only record of digests already ingested, one hex
// digest per line. Entries are never removed. Appends are serialized by a
// mutex so concurrent Record calls cannot interleave partial lines.
type FileLedger struct {
	mu      sync.Mutex
	path    string
	digests map[string]struct{}
}

// OpenLedger loads the ledger at path, creating an empty one if the file
// does not exist yet.
func OpenLedger(path string) (*FileLedger, error) {
	l := &FileLedger{path: path, digests: make(map[string]struct{})}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		d := strings.TrimSpace(scanner.Text())
		if d != "" {
			l.digests[d] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return l, nil
}

// Contains reports whether the digest has been recorded.
func (l *FileLedger) Contains(digest string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.digests[digest]
	return ok
}

// Record durably appends the digest. It is visible to subsequent Contains
// calls in this process and, once the append returns, across restarts.
// Recording an already-present digest is a no-op.
func (l *FileLedger) Record(digest string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.digests[digest]; ok {
		return nil
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger %s for append: %w", l.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(digest + "\n"); err != nil {
		return fmt.Errorf("appending to ledger %s: %w", l.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing ledger %s: %w", l.path, err)
	}

	l.digests[digest] = struct{}{}
	return nil
}

// Len returns the number of recorded digests.
func (l *FileLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.digests)
}
