package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"jobboard/internal/realtime"
	"jobboard/internal/repository"
)

// Scheduler runs the periodic maintenance work: expired OTP rows are swept
// every six hours, and the realtime session count is logged hourly.
type Scheduler struct {
	cron *cron.Cron
	otps *repository.OTPRepository
	dir  *realtime.Directory
	log  zerolog.Logger
}

func NewScheduler(otps *repository.OTPRepository, dir *realtime.Directory, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		otps: otps,
		dir:  dir,
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 */6 * * *", s.sweepExpiredOTPs); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 * * * *", s.auditSessions); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop lets in-flight jobs finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepExpiredOTPs() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.otps.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("otp sweep failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Msg("expired otps swept")
	}
}

func (s *Scheduler) auditSessions() {
	s.log.Info().Int("connected", s.dir.Len()).Msg("realtime sessions")
}
