package core

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/encodeous/vpnv4/state"
)

// Allocator hands out stable RD/RT identifiers to namespaces.
// A namespace keeps its identifier for the lifetime of the allocator, identifiers are never reclaimed.
type Allocator struct {
	rdBase uint32
	rtBase uint32
	maxID  int
	byNs   map[string]state.Allocation
	byID   map[uint16]string
}

// NewAllocator creates an allocator drawing identifiers from [0, maxID). maxID is clamped to [1, 65536].
func NewAllocator(rdBase, rtBase uint32, maxID int) *Allocator {
	maxID = min(max(maxID, 1), 1<<16)
	return &Allocator{
		rdBase: rdBase,
		rtBase: rtBase,
		maxID:  maxID,
		byNs:   make(map[string]state.Allocation),
		byID:   make(map[uint16]string),
	}
}

func (a *Allocator) candidate(namespace string) int {
	digest := sha256.Sum256([]byte(namespace))
	return int(binary.BigEndian.Uint16(digest[:2])) % a.maxID
}

// Allocate returns the allocation of namespace, assigning a new identifier on first use
func (a *Allocator) Allocate(namespace string) (state.Allocation, error) {
	if alloc, ok := a.byNs[namespace]; ok {
		return alloc, nil
	}
	c := a.candidate(namespace)
	for range a.maxID {
		id := uint16(c)
		if owner, ok := a.byID[id]; !ok || owner == namespace {
			alloc := state.Allocation{
				Identifier: id,
				RD:         fmt.Sprintf("%d:%d", a.rdBase, id),
				ImportRT:   fmt.Sprintf("%d:%d", a.rtBase, id),
				ExportRT:   fmt.Sprintf("%d:%d", a.rtBase, id),
			}
			a.byNs[namespace] = alloc
			a.byID[id] = namespace
			return alloc, nil
		}
		c = (c + 1) % a.maxID
	}
	return state.Allocation{}, fmt.Errorf("%w: no free identifier for %s in [0, %d)", state.ErrAllocatorExhausted, namespace, a.maxID)
}

func (a *Allocator) Lookup(namespace string) (state.Allocation, bool) {
	alloc, ok := a.byNs[namespace]
	return alloc, ok
}

func (a *Allocator) Len() int {
	return len(a.byNs)
}
