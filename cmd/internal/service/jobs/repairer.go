package jobs

import (
	"context"
	"time"

	"notehistory/cmd/internal/contract"

	"github.com/labstack/gommon/log"
)

type NoteRepairService interface {
	RepairNotes(ctx context.Context) (*contract.RepairReport, error)
}

// NoteRepairer periodically re-points notes left without a valid current
// version by interrupted requests.
type NoteRepairer struct {
	service  NoteRepairService
	interval time.Duration
}

func NewNoteRepairer(service NoteRepairService, interval time.Duration) *NoteRepairer {
	return &NoteRepairer{service: service, interval: interval}
}

// Start runs one pass immediately, then one per interval until ctx is done.
func (r *NoteRepairer) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Infof("Note repairer started, interval: %s", r.interval)
	r.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping note repairer...")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

func (r *NoteRepairer) RunOnce(ctx context.Context) *contract.RepairReport {
	report, err := r.service.RepairNotes(ctx)
	if err != nil {
		log.Errorf("Repairer: pass failed: %v", err)
		return nil
	}

	if report.Found > 0 {
		log.Infof("Repairer: %d inconsistent notes, %d repaired, %d unrepaired",
			report.Found, len(report.Repaired), len(report.Unrepaired))
	}
	return report
}
