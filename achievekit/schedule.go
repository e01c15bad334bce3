package achievekit

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/robfig/cron/v3"
)

// jitterSchedule fires at a random point between min and max after the
// previous activation so that clients do not upload in lockstep.
type jitterSchedule struct {
	min, max time.Duration
}

func (s jitterSchedule) Next(t time.Time) time.Time {
	spread := s.max - s.min
	if spread <= 0 {
		return t.Add(s.min)
	}
	return t.Add(s.min + time.Duration(rand.Int64N(int64(spread)+1)))
}

// newSaveSchedule returns the schedule driving periodic uploads: the CRON
// expression when one is configured, the jittered interval otherwise.
func newSaveSchedule(cfg Config) (cron.Schedule, error) {
	if cfg.SaveCronexpr == "" {
		return jitterSchedule{min: cfg.SaveIntervalMin, max: cfg.SaveIntervalMax}, nil
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(cfg.SaveCronexpr)
	if err != nil {
		return nil, fmt.Errorf("parse save cronexpr %q: %w", cfg.SaveCronexpr, err)
	}
	return sched, nil
}
