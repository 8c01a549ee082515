package processor

import "context"

// runGate admits one caller at a time. Unlike a mutex, waiting can be
// abandoned when ctx is done.
type runGate struct {
	ch chan struct{}
}

func newRunGate() *runGate {
	return &runGate{ch: make(chan struct{}, 1)}
}

func (g *runGate) enter(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case g.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *runGate) leave() {
	<-g.ch
}
