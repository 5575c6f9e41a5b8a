package ledger

import (
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serialises work per entity id inside one process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uuid.UUID]*refMutex)}
}

// Lock acquires every id in sorted order and returns the release func.
func (k *keyedMutex) Lock(ids ...uuid.UUID) func() {
	keys := SortIDs(ids)
	held := make([]*refMutex, 0, len(keys))

	for _, id := range keys {
		k.mu.Lock()

		m, ok := k.locks[id]
		if !ok {
			m = &refMutex{}
			k.locks[id] = m
		}

		m.refs++
		k.mu.Unlock()

		m.Lock()

		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()

			k.mu.Lock()

			held[i].refs--
			if held[i].refs == 0 {
				delete(k.locks, keys[i])
			}

			k.mu.Unlock()
		}
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.locks)
}

// SortIDs returns ids without duplicates in a fixed global order, so
// every caller acquires locks in the same sequence.
func SortIDs(ids []uuid.UUID) []uuid.UUID {
	out := slices.Clone(ids)
	slices.SortFunc(out, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})

	return slices.Compact(out)
}
