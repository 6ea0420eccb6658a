package resourceid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefix marks identifiers issued by the registry.
const Prefix = "res_"

var (
	entropyMu   sync.Mutex
	entropyOnce sync.Once
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

// New returns a res_* ULID string. IDs sort by creation time.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a res_* ULID string stamped with t.
func NewAt(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(t), newEntropy())
	return Prefix + strings.ToLower(id.String())
}

// IsValid reports whether the string is a res_* ULID.
func IsValid(value string) bool {
	if !strings.HasPrefix(value, Prefix) {
		return false
	}
	_, err := Parse(value)
	return err == nil
}

// Parse strips the res_ prefix and returns the ULID.
func Parse(value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, Prefix)
	value = strings.TrimPrefix(value, strings.ToUpper(Prefix))
	return ulid.ParseStrict(strings.ToUpper(value))
}
