package scheduler

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/scorecore/internal/domain"
)

type fakeMarkerStore struct {
	claimed map[string]bool
}

func newFakeMarkerStore() *fakeMarkerStore {
	return &fakeMarkerStore{claimed: make(map[string]bool)}
}

func (s *fakeMarkerStore) TryClaim(_ context.Context, scope string, periodStart time.Time) (bool, error) {
	key := scope + "/" + periodStart.Format(time.RFC3339)
	if s.claimed[key] {
		return false, nil
	}
	s.claimed[key] = true
	return true, nil
}

type fakeSongStore struct {
	ids []int
}

func (s *fakeSongStore) AllActiveSongIDs(_ context.Context, _ domain.GameVersion) ([]int, error) {
	return s.ids, nil
}

type fakeScheduleStore struct {
	schedules []*domain.ChallengeSchedule
}

func (s *fakeScheduleStore) PutSchedule(_ context.Context, schedule *domain.ChallengeSchedule) error {
	s.schedules = append(s.schedules, schedule)
	return nil
}

func (s *fakeScheduleStore) CurrentSchedule(_ context.Context, now time.Time) (*domain.ChallengeSchedule, error) {
	for _, schedule := range s.schedules {
		if !now.Before(schedule.PeriodStart) && now.Before(schedule.PeriodEnd) {
			return schedule, nil
		}
	}
	return nil, nil
}

func newTestScheduler(t *testing.T, songs []int, excluded []int, seed int64) (*Scheduler, *fakeMarkerStore, *fakeScheduleStore) {
	t.Helper()
	markers := newFakeMarkerStore()
	schedules := &fakeScheduleStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sched := New(
		markers,
		&fakeSongStore{ids: songs},
		schedules,
		domain.CurrentVersion,
		excluded,
		rand.New(rand.NewSource(seed)),
		logger,
	)
	return sched, markers, schedules
}

func TestRunScheduledWorkPicksTwoDistinctSongs(t *testing.T) {
	sched, _, schedules := newTestScheduler(t, []int{101, 102, 103, 104, 105}, nil, 1)
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	event, err := sched.RunScheduledWork(context.Background(), now)
	if err != nil {
		t.Fatalf("RunScheduledWork: %v", err)
	}
	if event == nil {
		t.Fatal("expected an event on winning the claim")
	}
	if len(event.Schedule.SongIDs) != PickCount {
		t.Fatalf("got %d songs, want %d", len(event.Schedule.SongIDs), PickCount)
	}
	if event.Schedule.SongIDs[0] == event.Schedule.SongIDs[1] {
		t.Error("the two challenge songs must be distinct")
	}
	if event.Slots[domain.ChallengeSlotToday] != event.Schedule.SongIDs[0] {
		t.Error("today slot does not match the first pick")
	}
	if event.Slots[domain.ChallengeSlotBonus] != event.Schedule.SongIDs[1] {
		t.Error("bonus slot does not match the second pick")
	}
	if len(schedules.schedules) != 1 {
		t.Fatalf("got %d persisted schedules, want 1", len(schedules.schedules))
	}

	wantStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !event.Schedule.PeriodStart.Equal(wantStart) {
		t.Errorf("PeriodStart = %v, want %v", event.Schedule.PeriodStart, wantStart)
	}
	if !event.Schedule.PeriodEnd.Equal(wantStart.AddDate(0, 0, 1)) {
		t.Errorf("PeriodEnd = %v, want next midnight", event.Schedule.PeriodEnd)
	}
}

func TestRunScheduledWorkOncePerPeriod(t *testing.T) {
	sched, _, schedules := newTestScheduler(t, []int{101, 102, 103}, nil, 1)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	if event, err := sched.RunScheduledWork(ctx, now); err != nil || event == nil {
		t.Fatalf("first run: event=%v err=%v", event, err)
	}

	// Same day, later: the claim is already taken.
	event, err := sched.RunScheduledWork(ctx, now.Add(6*time.Hour))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if event != nil {
		t.Error("second run in the same period must be a no-op")
	}
	if len(schedules.schedules) != 1 {
		t.Errorf("got %d schedules, want 1", len(schedules.schedules))
	}

	// Next day gets a fresh claim.
	event, err = sched.RunScheduledWork(ctx, now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("next-day run: %v", err)
	}
	if event == nil {
		t.Error("a new period must schedule again")
	}
}

func TestRunScheduledWorkDeterministicWithSeed(t *testing.T) {
	songs := []int{105, 101, 104, 102, 103}
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	a, _, _ := newTestScheduler(t, songs, nil, 42)
	b, _, _ := newTestScheduler(t, songs, nil, 42)

	eventA, err := a.RunScheduledWork(context.Background(), now)
	if err != nil {
		t.Fatalf("RunScheduledWork: %v", err)
	}
	eventB, err := b.RunScheduledWork(context.Background(), now)
	if err != nil {
		t.Fatalf("RunScheduledWork: %v", err)
	}

	if eventA.Schedule.SongIDs[0] != eventB.Schedule.SongIDs[0] ||
		eventA.Schedule.SongIDs[1] != eventB.Schedule.SongIDs[1] {
		t.Errorf("same seed picked %v and %v", eventA.Schedule.SongIDs, eventB.Schedule.SongIDs)
	}
}

func TestRunScheduledWorkExcludesSongs(t *testing.T) {
	// Only two songs survive the exclusions, so they must both be picked.
	songs := []int{101, 102, 103, 104}
	sched, _, _ := newTestScheduler(t, songs, []int{101, 103}, 7)
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	event, err := sched.RunScheduledWork(context.Background(), now)
	if err != nil {
		t.Fatalf("RunScheduledWork: %v", err)
	}
	for _, id := range event.Schedule.SongIDs {
		if id == 101 || id == 103 {
			t.Errorf("excluded song %d was selected", id)
		}
	}
}

func TestRunScheduledWorkExcludesRegionFanout(t *testing.T) {
	songs := append([]int{101, 102}, domain.RegionFanoutSongIDs()...)
	sched, _, _ := newTestScheduler(t, songs, nil, 7)
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	event, err := sched.RunScheduledWork(context.Background(), now)
	if err != nil {
		t.Fatalf("RunScheduledWork: %v", err)
	}
	for _, id := range event.Schedule.SongIDs {
		if domain.IsRegionFanout(id) {
			t.Errorf("fanout song %d was selected", id)
		}
	}
}

func TestRunScheduledWorkTooFewCandidates(t *testing.T) {
	sched, _, schedules := newTestScheduler(t, []int{101}, nil, 1)
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	if _, err := sched.RunScheduledWork(context.Background(), now); err == nil {
		t.Fatal("expected error with a single candidate song")
	}
	if len(schedules.schedules) != 0 {
		t.Error("no schedule must be persisted on failure")
	}
}

func TestPeriodWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 23, 59, 59, 0, time.UTC)
	start, end := PeriodWindow(now)
	if !start.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}
}
