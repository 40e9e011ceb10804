package digest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"danaku/internal/logger"
	"danaku/internal/mailer"
	"danaku/internal/models"
)

// Schedule is the local time of day the digest goes out.
type Schedule struct {
	Location *time.Location
	Hour     int
	Minute   int
}

// DefaultSchedule sends at 23:00 Jakarta time. It falls back to a fixed
// UTC+7 zone when the tz database is unavailable.
func DefaultSchedule() Schedule {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		loc = time.FixedZone("WIB", 7*60*60)
	}
	return Schedule{Location: loc, Hour: 23, Minute: 0}
}

// NextRun returns the first instant strictly after now at hour:minute in loc.
func NextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

// UserError records a failed delivery.
type UserError struct {
	UserID string
	Err    error
}

// Result is the outcome of one digest run.
type Result struct {
	Users    int
	Sent     int
	Skipped  int
	Errors   []UserError
	Duration time.Duration
}

// Runner sends the digest to every active user.
type Runner struct {
	db       *gorm.DB
	builder  *Builder
	sender   mailer.Sender
	schedule Schedule
	workers  int
	now      func() time.Time
	log      *zap.SugaredLogger
}

// NewRunner creates a new Runner.
func NewRunner(db *gorm.DB, sender mailer.Sender, schedule Schedule) *Runner {
	if schedule.Location == nil {
		schedule.Location = DefaultSchedule().Location
	}
	return &Runner{
		db:       db,
		builder:  NewBuilder(db),
		sender:   sender,
		schedule: schedule,
		workers:  4,
		now:      time.Now,
		log:      logger.Named("digest"),
	}
}

// RunOnce builds and sends one report per active user. Users without an
// email are skipped. A failure for one user does not stop the others; it
// is recorded in the result.
func (r *Runner) RunOnce(ctx context.Context) (*Result, error) {
	start := time.Now()
	today := r.now().In(r.schedule.Location)

	var users []models.User
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}

	result := &Result{Users: len(users)}
	if len(users) == 0 {
		r.log.Info("no users found, nothing to send")
		result.Duration = time.Since(start)
		return result, nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan *models.User)
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for user := range jobs {
				sent, err := r.sendOne(ctx, user, today)
				mu.Lock()
				switch {
				case err != nil:
					result.Errors = append(result.Errors, UserError{UserID: user.ID, Err: err})
				case sent:
					result.Sent++
				default:
					result.Skipped++
				}
				mu.Unlock()
			}
		}()
	}
	for i := range users {
		jobs <- &users[i]
	}
	close(jobs)
	wg.Wait()

	result.Duration = time.Since(start)
	r.log.Infow("digest run completed",
		"users", result.Users,
		"sent", result.Sent,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
		"duration", result.Duration.String(),
	)
	return result, nil
}

func (r *Runner) sendOne(ctx context.Context, user *models.User, today time.Time) (bool, error) {
	if user.Email == "" {
		r.log.Warnw("user has no email, skipping digest", "user_id", user.ID)
		return false, nil
	}

	rep, err := r.builder.Build(ctx, user, today)
	if err != nil {
		r.log.Errorw("failed to build digest", "user_id", user.ID, "error", err)
		return false, err
	}
	if err := r.sender.Send(ctx, rep.Message()); err != nil {
		r.log.Errorw("failed to send digest", "user_id", user.ID, "error", err)
		return false, err
	}
	return true, nil
}

// Start runs the digest every day at the scheduled time until ctx is done.
func (r *Runner) Start(ctx context.Context) {
	for {
		next := NextRun(r.now(), r.schedule.Hour, r.schedule.Minute, r.schedule.Location)
		r.log.Infow("next digest scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := r.RunOnce(ctx); err != nil {
			r.log.Errorw("digest run failed", "error", err)
		}
	}
}
