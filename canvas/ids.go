package canvas

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

const (
	// NodeIDPrefix prefixes every node identifier.
	NodeIDPrefix = "node-"
	// HistoryIDPrefix prefixes every history entry identifier.
	HistoryIDPrefix = "history-"
)

// IDAllocator issues session-unique, monotonically increasing identifiers. Node and
// history identifiers share one counter so no two identifiers carry the same suffix.
type IDAllocator struct {
	last atomic.Uint64
}

// NewIDAllocator creates an allocator whose first identifier has suffix 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// NextNodeID returns a fresh node identifier.
func (a *IDAllocator) NextNodeID() string {
	return fmt.Sprintf("%s%d", NodeIDPrefix, a.last.Add(1))
}

// NextHistoryID returns a fresh history entry identifier.
func (a *IDAllocator) NextHistoryID() string {
	return fmt.Sprintf("%s%d", HistoryIDPrefix, a.last.Add(1))
}

// Last returns the most recently issued numeric suffix.
func (a *IDAllocator) Last() uint64 {
	return a.last.Load()
}

// Reseed advances the allocator past the highest numeric suffix among ids. It never
// moves the counter backwards.
func (a *IDAllocator) Reseed(ids ...string) {
	var highest uint64
	for _, id := range ids {
		if n, ok := NumericSuffix(id); ok && n > highest {
			highest = n
		}
	}
	for {
		cur := a.last.Load()
		if highest <= cur || a.last.CompareAndSwap(cur, highest) {
			return
		}
	}
}

// NumericSuffix extracts the number after the last '-' of an identifier.
func NumericSuffix(id string) (uint64, bool) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 || i == len(id)-1 {
		return 0, false
	}
	n, err := strconv.ParseUint(id[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
