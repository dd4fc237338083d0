package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ari-backend/models"
	"ari-backend/testutil"
	"ari-backend/wizard"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func exerciseSessionStore(t *testing.T, store SessionStore) {
	ctx := context.Background()
	session := wizard.NewSession(uuid.New())
	require.NoError(t, store.Create(ctx, session))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.OwnerID, got.OwnerID)
	assert.Equal(t, wizard.StepBasicInfo, got.Wizard.Step())

	updated, err := store.Update(ctx, session.ID, func(s *wizard.Session) error {
		return s.Wizard.Merge(wizard.BasicInfoPatch{Name: ptr("Gala")})
	})
	require.NoError(t, err)
	assert.Equal(t, "Gala", updated.Wizard.Snapshot().Name)

	// failed updates still save what fn changed
	_, err = store.Update(ctx, session.ID, func(s *wizard.Session) error {
		s.Attempt.Error = "boom"
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")
	got, err = store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "boom", got.Attempt.Error)
	assert.Equal(t, "Gala", got.Wizard.Snapshot().Name)

	_, err = store.Update(ctx, uuid.New(), func(*wizard.Session) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, session.ID))
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStore(t *testing.T) {
	exerciseSessionStore(t, NewMemorySessionStore(time.Hour))
}

func TestMemorySessionStoreExpires(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	session := wizard.NewSession(uuid.New())
	require.NoError(t, store.Create(context.Background(), session))

	now = now.Add(2 * time.Minute)
	_, err := store.Get(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func exerciseConcurrentUpdates(t *testing.T, store SessionStore) {
	ctx := context.Background()
	session := wizard.NewSession(uuid.New())
	require.NoError(t, store.Create(ctx, session))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, session.ID, func(s *wizard.Session) error {
				return s.Wizard.Merge(wizard.BasicInfoPatch{Name: ptr(s.Wizard.Snapshot().Name + "x")})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, got.Wizard.Snapshot().Name, 20)
}

func TestMemorySessionStoreSerializesUpdates(t *testing.T) {
	exerciseConcurrentUpdates(t, NewMemorySessionStore(time.Hour))
}

func newRedisSessionStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewRedisSessionStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisSessionStore(t *testing.T) {
	store, mr := newRedisSessionStore(t)
	exerciseSessionStore(t, store)

	session := wizard.NewSession(uuid.New())
	require.NoError(t, store.Create(context.Background(), session))
	mr.FastForward(2 * time.Minute)
	_, err := store.Get(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionStoreSerializesUpdates(t *testing.T) {
	store, mr := newRedisSessionStore(t)
	exerciseConcurrentUpdates(t, store)
	for _, key := range mr.Keys() {
		assert.NotContains(t, key, ":lock")
	}
}

func TestRedisSessionStoreRerunsUpdateAfterConflict(t *testing.T) {
	store, mr := newRedisSessionStore(t)
	ctx := context.Background()
	session := wizard.NewSession(uuid.New())
	require.NoError(t, store.Create(ctx, session))
	key := store.key(session.ID)

	calls := 0
	got, err := store.Update(ctx, session.ID, func(s *wizard.Session) error {
		calls++
		if calls == 1 {
			// rewrite the key behind the store's back
			raw, err := mr.Get(key)
			require.NoError(t, err)
			require.NoError(t, mr.Set(key, raw))
		}
		return s.Wizard.Merge(wizard.BasicInfoPatch{Name: ptr("Gala")})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "Gala", got.Wizard.Snapshot().Name)
}

func TestRedisSessionStoreWaitsForLease(t *testing.T) {
	store, mr := newRedisSessionStore(t)
	ctx := context.Background()
	session := wizard.NewSession(uuid.New())
	require.NoError(t, store.Create(ctx, session))

	lockKey := store.key(session.ID) + ":lock"
	require.NoError(t, mr.Set(lockKey, "someone-else"))
	go func() {
		time.Sleep(100 * time.Millisecond)
		mr.Del(lockKey)
	}()

	_, err := store.Update(ctx, session.ID, func(s *wizard.Session) error {
		return s.Wizard.Merge(wizard.BasicInfoPatch{Name: ptr("Gala")})
	})
	require.NoError(t, err)

	require.NoError(t, mr.Set(lockKey, "someone-else"))
	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = store.Update(short, session.ID, func(*wizard.Session) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	got, err := mr.Get(lockKey)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got, "a waiting writer leaves the holder's lease alone")
}

// interruptedBackend lets a test act between the guest insert and the
// status upsert of a launch.
type interruptedBackend struct {
	*EventStore
	guestCalls  int
	afterGuests func()
}

func (b *interruptedBackend) BulkCreateGuests(ctx context.Context, guests []models.Guest) error {
	b.guestCalls++
	err := b.EventStore.BulkCreateGuests(ctx, guests)
	if b.guestCalls == 1 && b.afterGuests != nil {
		b.afterGuests()
	}
	return err
}

func reviewSession(t *testing.T) *wizard.Session {
	t.Helper()
	s := wizard.NewSession(uuid.New())
	c := s.Wizard
	require.NoError(t, c.Merge(wizard.BasicInfoPatch{
		Name:      ptr("Gala"),
		Date:      ptr("2025-06-15"),
		Venue:     ptr("Grand Hotel"),
		StartTime: ptr("18:00"),
	}))
	require.NoError(t, c.Advance())
	require.NoError(t, c.Advance())
	require.NoError(t, c.AddGuest(wizard.GuestDraft{Name: "Ann", PhoneNumber: "+15550000001"}))
	require.NoError(t, c.AddGuest(wizard.GuestDraft{Name: "Bob", PhoneNumber: "+15550000002"}))
	require.NoError(t, c.Advance())
	require.NoError(t, c.Merge(wizard.SchedulingPatch{
		InvitationSendDate:         ptr("2025-05-01"),
		RSVPReminderCount:          ptr(1),
		RSVPReminderDate1:          ptr("2025-06-01"),
		RSVPReminderMessageDefault: ptr("RSVP please"),
	}))
	require.NoError(t, c.Advance())
	require.Equal(t, wizard.StepReview, c.Step())
	return s
}

func TestRedisSessionStoreLaunchSurvivesConflict(t *testing.T) {
	db := testutil.NewDB(t)
	store, mr := newRedisSessionStore(t)
	ctx := context.Background()

	session := reviewSession(t)
	require.NoError(t, store.Create(ctx, session))
	key := store.key(session.ID)

	backend := &interruptedBackend{EventStore: NewEventStore(db)}
	backend.afterGuests = func() {
		raw, err := mr.Get(key)
		require.NoError(t, err)
		require.NoError(t, mr.Set(key, raw))
	}
	launcher := wizard.NewLauncher(backend)

	var result *wizard.Result
	got, err := store.Update(ctx, session.ID, func(s *wizard.Session) error {
		var err error
		result, err = s.Launch(ctx, launcher)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, backend.guestCalls, "the update ran again on the rewritten session")
	assert.True(t, got.Wizard.Closed())
	assert.Equal(t, wizard.LaunchSucceeded, got.Attempt.Status)
	assert.Equal(t, 2, result.Guests)

	var events, guests int64
	require.NoError(t, db.Model(&models.Event{}).Count(&events).Error)
	require.NoError(t, db.Model(&models.Guest{}).Where("event_id = ?", result.EventID).Count(&guests).Error)
	assert.EqualValues(t, 1, events)
	assert.EqualValues(t, 2, guests)

	stored, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, stored.Wizard.Closed())
}
