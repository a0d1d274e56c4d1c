package workers

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/logger"
)

var ErrJobNotFound = errors.New("scheduled job not found")

// Scheduler wraps gocron with name-addressed daily jobs. Names are unique:
// scheduling under an existing name either keeps or replaces that job.
type Scheduler struct {
	scheduler gocron.Scheduler
	location  *time.Location
	log       *zap.Logger

	mu sync.Mutex
}

func NewScheduler(loc *time.Location, log *zap.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		location:  loc,
		log:       logger.OrNop(log).With(zap.String("component", "scheduler")),
	}, nil
}

func (s *Scheduler) Location() *time.Location {
	return s.location
}

func (s *Scheduler) Start() {
	s.log.Info("scheduler_started")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	s.log.Info("scheduler_stopping")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) find(name string) gocron.Job {
	for _, j := range s.scheduler.Jobs() {
		if j.Name() == name {
			return j
		}
	}
	return nil
}

// ScheduleDaily runs task every day at hour:minute in the scheduler's
// location. With keepExisting set, a job already registered under name is
// left untouched and reported with created=false; otherwise it is replaced.
// A run still in progress when the next one is due is not interrupted; the
// next run is rescheduled instead.
func (s *Scheduler) ScheduleDaily(name string, hour, minute int, task func(), keepExisting bool) (uuid.UUID, bool, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return uuid.Nil, false, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	definition := gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0)))
	options := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}

	if existing := s.find(name); existing != nil {
		if keepExisting {
			return existing.ID(), false, nil
		}
		job, err := s.scheduler.Update(existing.ID(), definition, gocron.NewTask(task), options...)
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to reschedule %s: %w", name, err)
		}
		s.log.Info("job_rescheduled", zap.String("job", name), zap.Int("hour", hour), zap.Int("minute", minute))
		return job.ID(), true, nil
	}

	job, err := s.scheduler.NewJob(definition, gocron.NewTask(task), options...)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.log.Info("job_scheduled", zap.String("job", name), zap.Int("hour", hour), zap.Int("minute", minute))
	return job.ID(), true, nil
}

// Cancel removes the named job. An execution already running finishes.
func (s *Scheduler) Cancel(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.find(name)
	if job == nil {
		return ErrJobNotFound
	}
	return s.scheduler.RemoveJob(job.ID())
}

func (s *Scheduler) NextRun(name string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.find(name)
	if job == nil {
		return time.Time{}, ErrJobNotFound
	}
	return job.NextRun()
}

func (s *Scheduler) JobNames() []string {
	jobs := s.scheduler.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name())
	}
	return names
}
