package collab

import (
	"context"
	"time"

	"github.com/golang/glog"
)

// Sweeper periodically runs the coordinator's inactivity cleanup. Its
// lifecycle is explicit so the owning process controls when sweeping
// starts and stops.
type Sweeper struct {
	coord     *Coordinator
	interval  time.Duration
	threshold time.Duration
	stop      chan struct{}
	done      chan struct{}
}

func NewSweeper(coord *Coordinator, interval, threshold time.Duration) *Sweeper {
	return &Sweeper{
		coord:     coord,
		interval:  interval,
		threshold: threshold,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the sweep loop. Call at most once.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		glog.Infof("session sweeper running every %s (threshold %s)", s.interval, s.threshold)
		for {
			select {
			case <-ticker.C:
				s.coord.CleanupInactiveSessions(context.Background(), s.threshold)
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}
