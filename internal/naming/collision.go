package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver hands out output paths for one batch. Inputs that would
// produce the same output ("movie.mkv" and "movie.MKV", or one file listed
// twice under different spellings) get numbered variants so no run
// overwrites another run's result. Keys are compared case-insensitively so
// the behavior matches on case-folding filesystems. Goroutine-safe.
type CollisionResolver struct {
	mu     sync.Mutex
	owners map[string]string // folded output path → cleaned input path
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{owners: make(map[string]string)}
}

// Resolve claims requested for input and returns it, or the first free
// "{stem} (N){ext}" variant when another input already owns it. Claiming the
// same path again for the same input is a no-op.
func (cr *CollisionResolver) Resolve(input, requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	in := filepath.Clean(input)
	ext := filepath.Ext(requested)
	stem := strings.TrimSuffix(requested, ext)

	candidate := requested
	for n := 2; ; n++ {
		key := strings.ToLower(filepath.Clean(candidate))
		owner, taken := cr.owners[key]
		if !taken || owner == in {
			cr.owners[key] = in
			return candidate
		}
		candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
	}
}

// Owner returns the input that claimed output, if any.
func (cr *CollisionResolver) Owner(output string) (string, bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	in, ok := cr.owners[strings.ToLower(filepath.Clean(output))]
	return in, ok
}
