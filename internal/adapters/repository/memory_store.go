package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
)

var _ domain.Store = (*InMemoryStore)(nil)

type trackingKey struct {
	habitID int64
	day     string
}

// InMemoryStore keeps everything in maps. It honours the same uniqueness and
// ordering rules as SQLStore and hands out copies, never its own records.
type InMemoryStore struct {
	habits    map[int64]*domain.Habit
	trackings map[trackingKey]*domain.HabitTracking
	rollovers map[string]struct{}

	nextHabitID    int64
	nextTrackingID int64

	mu sync.RWMutex
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		habits:    make(map[int64]*domain.Habit),
		trackings: make(map[trackingKey]*domain.HabitTracking),
		rollovers: make(map[string]struct{}),
	}
}

func (r *InMemoryStore) Ping(ctx context.Context) error { return nil }
func (r *InMemoryStore) Close() error                   { return nil }

func copyHabit(h *domain.Habit) *domain.Habit {
	c := *h
	return &c
}

func copyTracking(t *domain.HabitTracking) *domain.HabitTracking {
	c := *t
	return &c
}

func (r *InMemoryStore) sortedHabitsLocked() []*domain.Habit {
	habits := make([]*domain.Habit, 0, len(r.habits))
	for _, h := range r.habits {
		habits = append(habits, h)
	}
	sort.Slice(habits, func(i, j int) bool {
		return habits[i].ID < habits[j].ID
	})
	return habits
}

func (r *InMemoryStore) findByNameLocked(name string) *domain.Habit {
	for _, h := range r.habits {
		if h.Name == name {
			return h
		}
	}
	return nil
}

func (r *InMemoryStore) CreateHabit(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByNameLocked(habit.Name) != nil {
		return domain.ErrDuplicateName
	}

	r.nextHabitID++
	habit.ID = r.nextHabitID
	habit.LongestStreak = max(habit.LongestStreak, habit.Streak)

	r.habits[habit.ID] = copyHabit(habit)
	return nil
}

func (r *InMemoryStore) GetHabit(ctx context.Context, id int64) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.habits[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	return copyHabit(habit), nil
}

func (r *InMemoryStore) UpdateHabit(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.habits[habit.ID]
	if !ok {
		return domain.ErrHabitNotFound
	}
	if other := r.findByNameLocked(habit.Name); other != nil && other.ID != habit.ID {
		return domain.ErrDuplicateName
	}

	existing.Name = habit.Name
	existing.Description = habit.Description
	existing.Icon = habit.Icon
	existing.Streak = habit.Streak
	existing.LongestStreak = max(existing.LongestStreak, habit.Streak)
	existing.UpdatedAt = habit.UpdatedAt

	habit.LongestStreak = existing.LongestStreak
	return nil
}

func (r *InMemoryStore) DeleteHabit(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.habits[id]; !ok {
		return domain.ErrHabitNotFound
	}

	r.deleteTrackingsLocked(id)
	delete(r.habits, id)
	return nil
}

func (r *InMemoryStore) isDoneLocked(habitID int64, day string) bool {
	t, ok := r.trackings[trackingKey{habitID, day}]
	return ok && t.Status
}

func (r *InMemoryStore) ListHabitsForDay(ctx context.Context, day string) ([]*domain.DayHabit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.DayHabit, 0, len(r.habits))
	for _, h := range r.sortedHabitsLocked() {
		result = append(result, &domain.DayHabit{Habit: *h, Done: r.isDoneLocked(h.ID, day)})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Done && !result[j].Done
	})
	return result, nil
}

func (r *InMemoryStore) ListHabits(ctx context.Context) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := r.sortedHabitsLocked()
	for i, h := range habits {
		habits[i] = copyHabit(h)
	}
	return habits, nil
}

func (r *InMemoryStore) ListHabitTitles(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	titles := make([]string, 0, len(r.habits))
	for _, h := range r.sortedHabitsLocked() {
		titles = append(titles, h.Name)
	}
	return titles, nil
}

func (r *InMemoryStore) ListHabitIDs(ctx context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.habits))
	for _, h := range r.sortedHabitsLocked() {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (r *InMemoryStore) CountHabits(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.habits), nil
}

func (r *InMemoryStore) HabitExists(ctx context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByNameLocked(name) != nil, nil
}

func (r *InMemoryStore) HabitIDByName(ctx context.Context, name string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h := r.findByNameLocked(name)
	if h == nil {
		return 0, domain.ErrHabitNotFound
	}
	return h.ID, nil
}

func (r *InMemoryStore) IconByName(ctx context.Context, name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h := r.findByNameLocked(name)
	if h == nil {
		return "", domain.ErrHabitNotFound
	}
	return h.Icon, nil
}

func (r *InMemoryStore) mutateStreak(id int64, fn func(h *domain.Habit)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.habits[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	fn(h)
	return nil
}

func (r *InMemoryStore) IncrementStreak(ctx context.Context, id int64) error {
	return r.mutateStreak(id, func(h *domain.Habit) { h.Streak++ })
}

func (r *InMemoryStore) DecrementStreak(ctx context.Context, id int64) error {
	return r.mutateStreak(id, func(h *domain.Habit) {
		if h.Streak > 0 {
			h.Streak--
		}
	})
}

func (r *InMemoryStore) ResetStreak(ctx context.Context, id int64) error {
	return r.mutateStreak(id, func(h *domain.Habit) { h.Streak = 0 })
}

func (r *InMemoryStore) RaiseLongestStreak(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.habits[id]
	if !ok || h.Streak <= h.LongestStreak {
		return false, nil
	}
	h.LongestStreak = h.Streak
	return true, nil
}

func (r *InMemoryStore) MaxLongestStreak(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best := 0
	for _, h := range r.habits {
		best = max(best, h.LongestStreak)
	}
	return best, nil
}

func (r *InMemoryStore) InsertTracking(ctx context.Context, t *domain.HabitTracking) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.habits[t.HabitID]; !ok {
		return false, domain.ErrHabitNotFound
	}

	key := trackingKey{t.HabitID, t.Date}
	if _, exists := r.trackings[key]; exists {
		return false, nil
	}

	r.nextTrackingID++
	t.ID = r.nextTrackingID
	r.trackings[key] = copyTracking(t)
	return true, nil
}

func (r *InMemoryStore) GetTracking(ctx context.Context, habitID int64, day string) (*domain.HabitTracking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trackings[trackingKey{habitID, day}]
	if !ok {
		return nil, domain.ErrTrackingNotFound
	}
	return copyTracking(t), nil
}

func (r *InMemoryStore) SetTrackingStatus(ctx context.Context, habitID int64, day string, status bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trackings[trackingKey{habitID, day}]
	if !ok {
		return domain.ErrTrackingNotFound
	}
	t.Status = status
	return nil
}

func (r *InMemoryStore) filterTrackings(keep func(*domain.HabitTracking) bool, less func(a, b *domain.HabitTracking) bool) []*domain.HabitTracking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := []*domain.HabitTracking{}
	for _, t := range r.trackings {
		if keep(t) {
			rows = append(rows, copyTracking(t))
		}
	}
	sort.Slice(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	return rows
}

func byHabit(a, b *domain.HabitTracking) bool { return a.HabitID < b.HabitID }

func byDay(a, b *domain.HabitTracking) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.HabitID < b.HabitID
}

func (r *InMemoryStore) ListTrackingsForDay(ctx context.Context, day string) ([]*domain.HabitTracking, error) {
	return r.filterTrackings(func(t *domain.HabitTracking) bool { return t.Date == day }, byHabit), nil
}

func (r *InMemoryStore) ListTrackingsForHabit(ctx context.Context, habitID int64) ([]*domain.HabitTracking, error) {
	return r.filterTrackings(func(t *domain.HabitTracking) bool { return t.HabitID == habitID }, byDay), nil
}

func (r *InMemoryStore) ListAllTrackings(ctx context.Context) ([]*domain.HabitTracking, error) {
	return r.filterTrackings(func(*domain.HabitTracking) bool { return true }, byDay), nil
}

func (r *InMemoryStore) CountTrackingsForDay(ctx context.Context, day string) (int, error) {
	rows, _ := r.ListTrackingsForDay(ctx, day)
	return len(rows), nil
}

func (r *InMemoryStore) CountCompletedOnDay(ctx context.Context, day string) (int, error) {
	rows := r.filterTrackings(func(t *domain.HabitTracking) bool { return t.Date == day && t.Status }, byHabit)
	return len(rows), nil
}

func (r *InMemoryStore) HabitIDsNotDoneOn(ctx context.Context, day string) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := []int64{}
	for _, h := range r.sortedHabitsLocked() {
		if !r.isDoneLocked(h.ID, day) {
			ids = append(ids, h.ID)
		}
	}
	return ids, nil
}

func (r *InMemoryStore) deleteTrackingsLocked(habitID int64) {
	for key := range r.trackings {
		if key.habitID == habitID {
			delete(r.trackings, key)
		}
	}
}

func (r *InMemoryStore) DeleteTrackingsForHabit(ctx context.Context, habitID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deleteTrackingsLocked(habitID)
	return nil
}

func (r *InMemoryStore) LastRollover(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	last := ""
	for day := range r.rollovers {
		if day > last {
			last = day
		}
	}
	return last, nil
}

func (r *InMemoryStore) HasRollover(ctx context.Context, day string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rollovers[day]
	return ok, nil
}

func (r *InMemoryStore) RecordRollover(ctx context.Context, day string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rollovers[day] = struct{}{}
	return nil
}
