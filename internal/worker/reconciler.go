// Package worker runs the background jobs that keep transaction state
// consistent when clients disappear mid-checkout.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Avinashkumar1307/project-grap/internal/repository"
)

// Reconciler periodically cancels transactions stuck in pending past the
// payment window.  A checkout the buyer abandoned never gets a verify call
// or a webhook, so nothing else would ever move it out of pending.
type Reconciler struct {
	Txns   *repository.TransactionRepo
	MaxAge time.Duration
	Spec   string // cron spec, e.g. "@every 5m"
	cron   *cron.Cron
}

func NewReconciler(txns *repository.TransactionRepo, maxAge time.Duration, spec string) *Reconciler {
	return &Reconciler{Txns: txns, MaxAge: maxAge, Spec: spec}
}

// Start schedules the sweep and returns.  Call Stop on shutdown.
func (r *Reconciler) Start() error {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(r.Spec, r.sweep); err != nil {
		return err
	}
	r.cron.Start()
	log.Printf("reconciler: sweeping stale pending transactions %s (window %s)", r.Spec, r.MaxAge)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (r *Reconciler) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

func (r *Reconciler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := r.Txns.CancelStalePending(ctx, r.MaxAge)
	if err != nil {
		log.Printf("reconciler: sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("reconciler: cancelled %d expired pending transactions", n)
	}
}
