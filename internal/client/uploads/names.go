package uploads

import (
	"crypto/rand"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Namer generates collision-resistant object names of the form
// <unix-ms>-<random>[.<ext>]. It is safe for concurrent use.
type Namer struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

func NewNamer() *Namer {
	return &Namer{entropy: ulid.Monotonic(rand.Reader, 0), now: time.Now}
}

// Name returns a fresh object name keeping the extension of original.
func (n *Namer) Name(original string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	id, err := ulid.New(ulid.Timestamp(now), n.entropy)
	if err != nil {
		return "", fmt.Errorf("generate object name: %w", err)
	}
	// The first 10 characters of a ULID encode the timestamp, already
	// carried by the millisecond prefix.
	random := strings.ToLower(id.String()[10:])

	name := fmt.Sprintf("%d-%s", now.UnixMilli(), random)
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(original), ".")); ext != "" {
		name += "." + ext
	}
	return name, nil
}
