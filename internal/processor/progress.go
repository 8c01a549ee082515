package processor

import (
	"context"
	"time"
)

// progress tracks one batch run. processed counts every finished item; done
// counts only the items that went through the pipeline, and elapsed is their
// time.
type progress struct {
	total     int
	processed int
	done      int
	elapsed   time.Duration
}

// remaining estimates the time left from the average time per pipeline item.
func (r progress) remaining() time.Duration {
	if r.done == 0 || r.processed >= r.total {
		return 0
	}
	perItem := r.elapsed / time.Duration(r.done)
	return perItem * time.Duration(r.total-r.processed)
}

func (p *implProcessor) reportProgress(ctx context.Context) {
	r := p.progress
	eta := r.remaining()
	p.logger.Debug(ctx, "Progress %d/%d, estimated remaining %s", r.processed, r.total, eta.Round(time.Second))
	p.sink.Progress(ctx, p.cfg.Name, r.total, r.processed, eta)
}
