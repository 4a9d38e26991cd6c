package reservation

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"

	"github.com/iliyamo/ticketing-core/internal/config"
	"github.com/iliyamo/ticketing-core/internal/database"
	"github.com/iliyamo/ticketing-core/internal/kv"
	"github.com/iliyamo/ticketing-core/internal/lock"
	"github.com/iliyamo/ticketing-core/internal/queue"
	"github.com/iliyamo/ticketing-core/internal/repository"
	"github.com/iliyamo/ticketing-core/internal/ticketing"
)

// testFixture wires a real engine against real MySQL and Redis, the same
// integration posture as the original backend's test_seat_concurrency.py,
// which books against the live database and Redis rather than mocks. The
// test skips entirely if either dependency is unreachable.
type testFixture struct {
	db  *sql.DB
	rdb *redis.Client
	eng *Engine
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	dbHost := envOr("TEST_DB_HOST", "localhost")
	dbPort := envOr("TEST_DB_PORT", "3306")
	dbUser := envOr("TEST_DB_USER", "root")
	dbPass := os.Getenv("TEST_DB_PASS")
	dbName := envOr("TEST_DB_NAME", "ticketing_test")

	db, err := database.Open(dbUser, dbPass, dbHost, dbPort, dbName)
	if err != nil {
		t.Skipf("mysql not reachable: %v", err)
	}

	redisAddr := envOr("TEST_REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		t.Skipf("redis not reachable at %s: %v", redisAddr, err)
	}

	t.Cleanup(func() {
		_ = db.Close()
		_ = rdb.Close()
	})

	events := repository.NewEventRepo(db)
	schedules := repository.NewScheduleRepo(db)
	venues := repository.NewVenueRepo(db)
	grades := repository.NewSeatGradeRepo(db)
	tickets := repository.NewTicketRepo(db)
	bookings := repository.NewBookingRepo(db)
	locks := lock.NewManager(kv.New(rdb), 2*time.Second)
	queueEngine := queue.NewEngine(rdb, config.QueueConfig{
		BatchSize: 50, BatchInterval: time.Hour, TokenTTL: time.Minute,
	})

	eng := NewEngine(db, events, schedules, venues, grades, tickets, bookings, locks, queueEngine, rdb)
	return &testFixture{db: db, rdb: rdb, eng: eng}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// seedEvent creates a non-gated venue/event/schedule triple so bookings can
// be created against it without a queue token.
func (f *testFixture) seedEvent(t *testing.T) (eventID uint64, scheduleID uint64) {
	t.Helper()
	ctx := context.Background()

	venue := &repository.Venue{Name: "Concurrency Test Hall"}
	if err := repository.NewVenueRepo(f.db).Create(ctx, venue); err != nil {
		t.Fatalf("seed venue: %v", err)
	}

	event := &repository.Event{
		OwnerID: 1, VenueID: venue.ID, Title: "Concurrency Test Event", Genre: "CONCERT",
	}
	if err := repository.NewEventRepo(f.db).Create(ctx, event); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	schedule := &repository.Schedule{EventID: event.ID, StartAt: time.Now().Add(24 * time.Hour)}
	if err := repository.NewScheduleRepo(f.db).Create(ctx, schedule); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	t.Cleanup(func() {
		_, _ = f.db.Exec(`DELETE FROM bookings WHERE ticket_id IN (SELECT id FROM tickets WHERE event_id = ?)`, event.ID)
		_, _ = f.db.Exec(`DELETE FROM tickets WHERE event_id = ?`, event.ID)
		_, _ = f.db.Exec(`DELETE FROM schedules WHERE event_id = ?`, event.ID)
		_, _ = f.db.Exec(`DELETE FROM events WHERE id = ?`, event.ID)
		_, _ = f.db.Exec(`DELETE FROM venues WHERE id = ?`, venue.ID)
	})

	return event.ID, schedule.ID
}

// TestConcurrentBookingOneWinner is the core property from the original
// backend's test_concurrent_booking_with_lock: five users race to book the
// same seat, and exactly one booking must be created.
func TestConcurrentBookingOneWinner(t *testing.T) {
	f := newTestFixture(t)
	eventID, scheduleID := f.seedEvent(t)

	const numUsers = 5
	var wg sync.WaitGroup
	var successes atomic.Int64
	var heldByOther atomic.Int64

	for i := 1; i <= numUsers; i++ {
		wg.Add(1)
		go func(userID uint64) {
			defer wg.Done()
			req := CreateBookingsRequest{
				EventID:    eventID,
				ScheduleID: &scheduleID,
				Seats: []BookingSeat{
					{Row: "1열", Number: 1, Grade: "VIP", Price: 100000},
				},
				TotalPriceCents: 100000,
				ReceiptMethod:   "on_site",
			}
			_, err := f.eng.CreateBookings(context.Background(), req, userID, "")
			if err == nil {
				successes.Inc()
				return
			}
			if terr, ok := err.(*ticketing.Error); ok &&
				(terr.Kind == ticketing.KindSeatHeldByOther || terr.Kind == ticketing.KindSeatBooked) {
				heldByOther.Inc()
				return
			}
			t.Errorf("user %d: unexpected error: %v", userID, err)
		}(uint64(i))
	}
	wg.Wait()

	if got := successes.Load(); got != 1 {
		t.Fatalf("expected exactly 1 successful booking, got %d (rejected=%d)", got, heldByOther.Load())
	}
	if got := heldByOther.Load(); got != numUsers-1 {
		t.Fatalf("expected %d rejected bookings, got %d", numUsers-1, got)
	}
}

// TestLockSeatsIsIdempotentForSameUser verifies that re-locking a seat you
// already hold succeeds rather than reporting it as held by another user.
func TestLockSeatsIsIdempotentForSameUser(t *testing.T) {
	f := newTestFixture(t)
	eventID, scheduleID := f.seedEvent(t)
	seats := []SeatPosition{{Row: "2열", Number: 1}}

	first, err := f.eng.LockSeats(context.Background(), eventID, &scheduleID, seats, 7, "")
	if err != nil || !first.Success {
		t.Fatalf("first lock should succeed: success=%v err=%v", first.Success, err)
	}

	second, err := f.eng.LockSeats(context.Background(), eventID, &scheduleID, seats, 7, "")
	if err != nil || !second.Success {
		t.Fatalf("re-locking the same seat as the same user should succeed: success=%v err=%v", second.Success, err)
	}

	other, err := f.eng.LockSeats(context.Background(), eventID, &scheduleID, seats, 8, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other.Success {
		t.Fatal("a different user should not be able to lock an already-held seat")
	}
}

