// Package scheduler runs the dashboard's periodic background triggers
// (chart reload, sidebar refresh) on robfig/cron.
package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron tasks.
type Scheduler struct {
	Cron *cron.Cron
}

// New creates a Scheduler. Specs carry a leading seconds field
// ("*/30 * * * * *") or use a descriptor such as "@every 60s".
func New() *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Register adds fn under spec. name is only used in logs and errors.
func (s *Scheduler) Register(name, spec string, fn func()) error {
	if _, err := s.Cron.AddFunc(spec, func() {
		log.Printf("[scheduler] running %s", name)
		fn()
	}); err != nil {
		return fmt.Errorf("register %s task: %w", name, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Printf("[scheduler] started with %d task(s)", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[scheduler] stopped")
}
