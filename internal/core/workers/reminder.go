package workers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/notify"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/logger"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/metrics"
)

const (
	SlotMorning = "morning"
	SlotEvening = "evening"

	clockLayout = "15:04"
)

var ErrUnknownSlot = fmt.Errorf("unknown reminder slot (want %q or %q)", SlotMorning, SlotEvening)

type reminderText struct {
	title string
	body  string
}

var reminderTexts = map[string]reminderText{
	SlotMorning: {title: "Morning Reminder", body: "Time for your morning routine."},
	SlotEvening: {title: "Evening Reminder", body: "Time to wind down for the evening."},
}

type DayProgress interface {
	CountHabitsForDate(ctx context.Context, day string) (int, error)
	CountCompletedHabitsOnDate(ctx context.Context, day string) (int, error)
}

// ReminderScheduler fires one notification per configured slot each day.
type ReminderScheduler struct {
	scheduler *Scheduler
	notifier  notify.Notifier
	progress  DayProgress
	clock     domain.Clock
	metrics   *metrics.Recorder
	log       *zap.Logger

	mu    sync.RWMutex
	slots map[string]string
}

func NewReminderScheduler(
	scheduler *Scheduler,
	notifier notify.Notifier,
	progress DayProgress,
	clock domain.Clock,
	rec *metrics.Recorder,
	log *zap.Logger,
) *ReminderScheduler {
	return &ReminderScheduler{
		scheduler: scheduler,
		notifier:  notifier,
		progress:  progress,
		clock:     clock,
		metrics:   rec,
		log:       logger.OrNop(log).With(zap.String("component", "reminders")),
		slots:     make(map[string]string),
	}
}

func parseClock(hhmm string) (int, int, error) {
	t, err := time.Parse(clockLayout, hhmm)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid reminder time %q (must be HH:MM)", hhmm)
	}
	return t.Hour(), t.Minute(), nil
}

// DelayUntil returns how long to wait from now until the next hh:mm in
// now's location. A time already reached today is scheduled for tomorrow.
func DelayUntil(now time.Time, hhmm string) (time.Duration, error) {
	h, m, err := parseClock(hhmm)
	if err != nil {
		return 0, err
	}

	y, mo, d := now.Date()
	next := time.Date(y, mo, d, h, m, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(y, mo, d+1, h, m, 0, 0, now.Location())
	}
	return next.Sub(now), nil
}

func jobName(slot string) string {
	return "reminder-" + slot
}

// Start schedules both slots.
func (r *ReminderScheduler) Start(morning, evening string) error {
	if err := r.SetSlot(SlotMorning, morning); err != nil {
		return err
	}
	return r.SetSlot(SlotEvening, evening)
}

// SetSlot (re)schedules a slot at hh:mm, replacing any earlier time.
func (r *ReminderScheduler) SetSlot(slot, hhmm string) error {
	if _, ok := reminderTexts[slot]; !ok {
		return ErrUnknownSlot
	}
	h, m, err := parseClock(hhmm)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, _, err := r.scheduler.ScheduleDaily(jobName(slot), h, m, func() {
		_ = r.Send(context.Background(), slot)
	}, false); err != nil {
		return err
	}
	r.slots[slot] = fmt.Sprintf("%02d:%02d", h, m)

	if delay, err := DelayUntil(r.clock.Now(), r.slots[slot]); err == nil {
		r.log.Info("reminder_scheduled", zap.String("slot", slot), zap.String("at", r.slots[slot]), zap.Duration("first_run_in", delay))
	}
	return nil
}

// Slots returns the configured slot times keyed by slot name.
func (r *ReminderScheduler) Slots() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.slots))
	for k, v := range r.slots {
		out[k] = v
	}
	return out
}

func (r *ReminderScheduler) SlotNames() []string {
	names := make([]string, 0, len(reminderTexts))
	for k := range reminderTexts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Send delivers the reminder for slot right away.
func (r *ReminderScheduler) Send(ctx context.Context, slot string) error {
	text, ok := reminderTexts[slot]
	if !ok {
		return ErrUnknownSlot
	}

	now := r.clock.Now()
	today := domain.FormatDay(now)
	n := notify.Notification{
		Kind:   notify.KindReminder,
		Title:  text.title,
		Body:   text.body,
		Slot:   slot,
		Day:    today,
		SentAt: now,
	}

	if r.progress != nil {
		total, terr := r.progress.CountHabitsForDate(ctx, today)
		done, derr := r.progress.CountCompletedHabitsOnDate(ctx, today)
		if terr == nil && derr == nil {
			n.Body = fmt.Sprintf("%s %d of %d habits done today.", text.body, done, total)
			n.Data = map[string]any{"total": total, "completed": done}
		} else {
			r.log.Warn("reminder_progress_unavailable", zap.String("slot", slot), zap.NamedError("total_error", terr), zap.NamedError("completed_error", derr))
		}
	}

	err := r.notifier.Notify(ctx, n)
	r.metrics.IncReminder(slot, err == nil)
	if err != nil {
		r.log.Error("reminder_failed", zap.String("slot", slot), zap.Error(err))
		return err
	}
	return nil
}

func (r *ReminderScheduler) NextRun(slot string) (time.Time, error) {
	if _, ok := reminderTexts[slot]; !ok {
		return time.Time{}, ErrUnknownSlot
	}
	return r.scheduler.NextRun(jobName(slot))
}
