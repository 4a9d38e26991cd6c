// Package lock implements the per-seat distributed lock used during the
// fast-rejection phase of a reservation: try_lock / owner / unlock backed
// by a single Redis key per ticket, value "{user_id}:{nonce}".
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/ticketing-core/internal/kv"
)

// Manager grants short-TTL, non-blocking ownership over a ticket id so
// concurrent reservation attempts reject in O(1) before ever touching the
// database.
type Manager struct {
	store   *kv.Store
	timeout time.Duration
}

func NewManager(store *kv.Store, timeout time.Duration) *Manager {
	return &Manager{store: store, timeout: timeout}
}

func seatLockKey(ticketID int64) string {
	return fmt.Sprintf("seat_lock:%d", ticketID)
}

// TryLock atomically sets the lock for ticketID to "{userID}:{nonce}" with
// the configured TTL only if the key is absent. Non-blocking: callers that
// lose the race get false immediately and must abort.
func (m *Manager) TryLock(ctx context.Context, ticketID int64, userID uint64) (bool, error) {
	nonce, err := randomNonce()
	if err != nil {
		return false, err
	}
	value := fmt.Sprintf("%d:%s", userID, nonce)
	return m.store.SetNX(ctx, seatLockKey(ticketID), value, m.timeout)
}

// Owner returns the user id currently holding the lock, or (0, false) if
// the lock is absent or its value does not match the "{user_id}:{nonce}"
// format.
func (m *Manager) Owner(ctx context.Context, ticketID int64) (uint64, bool, error) {
	val, err := m.store.Get(ctx, seatLockKey(ticketID))
	if err != nil {
		if kv.IsNil(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	idPart, _, found := strings.Cut(val, ":")
	if !found {
		return 0, false, nil
	}
	uid, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return uid, true, nil
}

// Unlock releases the lock. When userID is non-zero the release is
// conditional: it only deletes the key if the stored owner still matches,
// so a lock re-acquired by another user after TTL expiry is never
// clobbered by a stale caller. userID == 0 forces an unconditional delete.
func (m *Manager) Unlock(ctx context.Context, ticketID int64, userID uint64) error {
	key := seatLockKey(ticketID)
	if userID == 0 {
		return m.store.Delete(ctx, key)
	}
	val, err := m.store.Get(ctx, key)
	if err != nil {
		if kv.IsNil(err) {
			return nil
		}
		return err
	}
	idPart, _, found := strings.Cut(val, ":")
	if !found || idPart != strconv.FormatUint(userID, 10) {
		return nil
	}
	_, err = m.store.CompareAndDelete(ctx, key, val)
	return err
}

func randomNonce() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
