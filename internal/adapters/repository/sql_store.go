package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
)

var _ domain.Store = (*SQLStore)(nil)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

func dialectOf(driver string) dialect {
	if driver == "sqlite" {
		return dialectSQLite
	}
	return dialectPostgres
}

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLStore persists habits and trackings through sqlx. The same queries run
// on PostgreSQL (pgx or lib/pq) and SQLite; placeholders are rebound per
// driver.
type SQLStore struct {
	db      *sqlx.DB
	dialect dialect
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, dialect: dialectOf(db.DriverName())}
}

// OpenSQLStore connects, tunes the pool for the driver and applies pending
// migrations.
func OpenSQLStore(ctx context.Context, driver, dsn string, log *zap.Logger) (*SQLStore, error) {
	if dialectOf(driver) == dialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if dialectOf(driver) == dialectSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	store := NewSQLStore(db)
	if err := store.Migrate(ctx, log); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func sqliteDSN(path string) string {
	if path == "" || path == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (s *SQLStore) Migrate(ctx context.Context, log *zap.Logger) error {
	migFS, err := DialectMigrations(s.db.DriverName())
	if err != nil {
		return fmt.Errorf("failed to access migrations: %w", err)
	}
	if _, err := NewMigrator(s.db, migFS, log).Apply(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *SQLStore) DB() *sqlx.DB {
	return s.db
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) q(query string) string {
	return s.db.Rebind(query)
}

func rowsAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

const habitColumns = `id, name, description, icon, streak, longest_streak, created_at, updated_at`

// --- habits ---

func (s *SQLStore) CreateHabit(ctx context.Context, h *domain.Habit) error {
	query := s.q(`
        INSERT INTO habits (name, description, icon, streak, longest_streak, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        RETURNING id`)

	longest := max(h.LongestStreak, h.Streak)
	err := s.db.QueryRowxContext(ctx, query,
		h.Name, h.Description, h.Icon, h.Streak, longest, h.CreatedAt, h.UpdatedAt,
	).Scan(&h.ID)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.LongestStreak = longest
	return nil
}

func (s *SQLStore) GetHabit(ctx context.Context, id int64) (*domain.Habit, error) {
	var h domain.Habit
	err := s.db.GetContext(ctx, &h, s.q(`SELECT `+habitColumns+` FROM habits WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &h, nil
}

func (s *SQLStore) UpdateHabit(ctx context.Context, h *domain.Habit) error {
	query := s.q(`
        UPDATE habits SET
            name = ?, description = ?, icon = ?, streak = ?,
            longest_streak = CASE WHEN ? > longest_streak THEN ? ELSE longest_streak END,
            updated_at = ?
        WHERE id = ?
        RETURNING longest_streak`)

	var longest int
	err := s.db.QueryRowxContext(ctx, query,
		h.Name, h.Description, h.Icon, h.Streak, h.Streak, h.Streak, h.UpdatedAt, h.ID,
	).Scan(&longest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrHabitNotFound
		}
		if mapped := mapConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	h.LongestStreak = longest
	return nil
}

func (s *SQLStore) DeleteHabit(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM habit_trackings WHERE habit_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete trackings: %w", err)
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM habits WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	if err := rowsAffected(res, domain.ErrHabitNotFound); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLStore) ListHabitsForDay(ctx context.Context, day string) ([]*domain.DayHabit, error) {
	query := s.q(`
        SELECT h.id, h.name, h.description, h.icon, h.streak, h.longest_streak,
               h.created_at, h.updated_at, COALESCE(t.status, FALSE) AS done
        FROM habits h
        LEFT JOIN habit_trackings t ON t.habit_id = h.id AND t.day = ?
        ORDER BY done DESC, h.id ASC`)

	habits := []*domain.DayHabit{}
	if err := s.db.SelectContext(ctx, &habits, query, day); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return habits, nil
}

func (s *SQLStore) ListHabits(ctx context.Context) ([]*domain.Habit, error) {
	habits := []*domain.Habit{}
	if err := s.db.SelectContext(ctx, &habits, `SELECT `+habitColumns+` FROM habits ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return habits, nil
}

func (s *SQLStore) ListHabitTitles(ctx context.Context) ([]string, error) {
	titles := []string{}
	if err := s.db.SelectContext(ctx, &titles, `SELECT name FROM habits ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return titles, nil
}

func (s *SQLStore) ListHabitIDs(ctx context.Context) ([]int64, error) {
	ids := []int64{}
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM habits ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return ids, nil
}

func (s *SQLStore) CountHabits(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM habits`); err != nil {
		return 0, fmt.Errorf("count error: %w", err)
	}
	return n, nil
}

func (s *SQLStore) HabitExists(ctx context.Context, name string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM habits WHERE name = ?`), name); err != nil {
		return false, fmt.Errorf("existence check failed: %w", err)
	}
	return n > 0, nil
}

func (s *SQLStore) HabitIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, s.q(`SELECT id FROM habits WHERE name = ?`), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrHabitNotFound
		}
		return 0, err
	}
	return id, nil
}

func (s *SQLStore) IconByName(ctx context.Context, name string) (string, error) {
	var icon string
	err := s.db.GetContext(ctx, &icon, s.q(`SELECT icon FROM habits WHERE name = ?`), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrHabitNotFound
		}
		return "", err
	}
	return icon, nil
}

func (s *SQLStore) execStreak(ctx context.Context, query string, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(query), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("streak update failed: %w", err)
	}
	return rowsAffected(res, domain.ErrHabitNotFound)
}

func (s *SQLStore) IncrementStreak(ctx context.Context, id int64) error {
	return s.execStreak(ctx, `UPDATE habits SET streak = streak + 1, updated_at = ? WHERE id = ?`, id)
}

func (s *SQLStore) DecrementStreak(ctx context.Context, id int64) error {
	return s.execStreak(ctx, `
        UPDATE habits
        SET streak = CASE WHEN streak > 0 THEN streak - 1 ELSE 0 END, updated_at = ?
        WHERE id = ?`, id)
}

func (s *SQLStore) ResetStreak(ctx context.Context, id int64) error {
	return s.execStreak(ctx, `UPDATE habits SET streak = 0, updated_at = ? WHERE id = ?`, id)
}

func (s *SQLStore) RaiseLongestStreak(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE habits SET longest_streak = streak WHERE id = ? AND streak > longest_streak`), id)
	if err != nil {
		return false, fmt.Errorf("longest streak update failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) MaxLongestStreak(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COALESCE(MAX(longest_streak), 0) FROM habits`); err != nil {
		return 0, err
	}
	return n, nil
}

// --- trackings ---

func (s *SQLStore) InsertTracking(ctx context.Context, t *domain.HabitTracking) (bool, error) {
	query := s.q(`
        INSERT INTO habit_trackings (habit_id, day, status)
        VALUES (?, ?, ?)
        ON CONFLICT (habit_id, day) DO NOTHING
        RETURNING id`)

	err := s.db.QueryRowxContext(ctx, query, t.HabitID, t.Date, t.Status).Scan(&t.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		if mapped := mapConstraintError(err); mapped != err {
			return false, mapped
		}
		return false, fmt.Errorf("failed to insert tracking: %w", err)
	}
	return true, nil
}

func (s *SQLStore) GetTracking(ctx context.Context, habitID int64, day string) (*domain.HabitTracking, error) {
	var t domain.HabitTracking
	err := s.db.GetContext(ctx, &t,
		s.q(`SELECT id, habit_id, day, status FROM habit_trackings WHERE habit_id = ? AND day = ?`), habitID, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTrackingNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *SQLStore) SetTrackingStatus(ctx context.Context, habitID int64, day string, status bool) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE habit_trackings SET status = ? WHERE habit_id = ? AND day = ?`), status, habitID, day)
	if err != nil {
		return fmt.Errorf("tracking update failed: %w", err)
	}
	return rowsAffected(res, domain.ErrTrackingNotFound)
}

func (s *SQLStore) selectTrackings(ctx context.Context, query string, args ...any) ([]*domain.HabitTracking, error) {
	rows := []*domain.HabitTracking{}
	if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return rows, nil
}

func (s *SQLStore) ListTrackingsForDay(ctx context.Context, day string) ([]*domain.HabitTracking, error) {
	return s.selectTrackings(ctx, `SELECT id, habit_id, day, status FROM habit_trackings WHERE day = ? ORDER BY habit_id ASC`, day)
}

func (s *SQLStore) ListTrackingsForHabit(ctx context.Context, habitID int64) ([]*domain.HabitTracking, error) {
	return s.selectTrackings(ctx, `SELECT id, habit_id, day, status FROM habit_trackings WHERE habit_id = ? ORDER BY day ASC`, habitID)
}

func (s *SQLStore) ListAllTrackings(ctx context.Context) ([]*domain.HabitTracking, error) {
	return s.selectTrackings(ctx, `SELECT id, habit_id, day, status FROM habit_trackings ORDER BY day ASC, habit_id ASC`)
}

func (s *SQLStore) CountTrackingsForDay(ctx context.Context, day string) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM habit_trackings WHERE day = ?`), day); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLStore) CountCompletedOnDay(ctx context.Context, day string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		s.q(`SELECT COUNT(*) FROM habit_trackings WHERE day = ? AND status = ?`), day, true)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLStore) HabitIDsNotDoneOn(ctx context.Context, day string) ([]int64, error) {
	query := s.q(`
        SELECT h.id FROM habits h
        WHERE NOT EXISTS (
            SELECT 1 FROM habit_trackings t
            WHERE t.habit_id = h.id AND t.day = ? AND t.status = ?
        )
        ORDER BY h.id ASC`)

	ids := []int64{}
	if err := s.db.SelectContext(ctx, &ids, query, day, true); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return ids, nil
}

func (s *SQLStore) DeleteTrackingsForHabit(ctx context.Context, habitID int64) error {
	if _, err := s.db.ExecContext(ctx, s.q(`DELETE FROM habit_trackings WHERE habit_id = ?`), habitID); err != nil {
		return fmt.Errorf("failed to delete trackings: %w", err)
	}
	return nil
}

// --- rollover ledger ---

func (s *SQLStore) LastRollover(ctx context.Context) (string, error) {
	var day string
	if err := s.db.GetContext(ctx, &day, `SELECT COALESCE(MAX(day), '') FROM rollovers`); err != nil {
		return "", err
	}
	return day, nil
}

func (s *SQLStore) HasRollover(ctx context.Context, day string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM rollovers WHERE day = ?`), day); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) RecordRollover(ctx context.Context, day string) error {
	query := s.q(`
        INSERT INTO rollovers (day, completed_at) VALUES (?, ?)
        ON CONFLICT (day) DO UPDATE SET completed_at = excluded.completed_at`)

	if _, err := s.db.ExecContext(ctx, query, day, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record rollover: %w", err)
	}
	return nil
}
