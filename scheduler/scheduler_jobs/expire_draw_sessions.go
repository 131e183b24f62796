package scheduler_jobs

import (
	"github.com/sirupsen/logrus"
)

// SessionSweeper drops rank-up draws nobody has touched for too long.
type SessionSweeper interface {
	ExpireStale() int
}

func ExpireDrawSessions(sweeper SessionSweeper, log *logrus.Logger) int {
	expired := sweeper.ExpireStale()
	if expired > 0 {
		log.WithField("expired", expired).Info("Expired stale draw sessions")
	}
	return expired
}
