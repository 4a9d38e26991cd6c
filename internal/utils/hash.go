package utils

import (
	"fmt"
	"hash/fnv"
)

// VirtualTicketID derives a deterministic, negative synthetic ticket id for
// a seat position that has not yet been materialized into the tickets
// table. It must be stable across processes, so it uses 64-bit FNV-1a
// rather than Go's randomized built-in map/string hashing.
func VirtualTicketID(eventID uint64, scheduleID *uint64, rowLabel string, seatNumber uint32) int64 {
	sid := uint64(0)
	if scheduleID != nil {
		sid = *scheduleID
	}
	key := fmt.Sprintf("%d:%d:%s:%d", eventID, sid, rowLabel, seatNumber)

	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	sum := h.Sum64()

	return -int64(sum % 1_000_000)
}
