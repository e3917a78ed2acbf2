package content

import "time"

// fuse is a restartable one-shot timer whose channel is nil while
// disarmed, so it can sit in a select without firing.
type fuse struct {
	timer *time.Timer
	ch    <-chan time.Time
}

func (f *fuse) arm(d time.Duration) {
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.NewTimer(d)
	f.ch = f.timer.C
}

func (f *fuse) disarm() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.ch = nil
}

func (f *fuse) armed() bool {
	return f.ch != nil
}

func (f *fuse) c() <-chan time.Time {
	return f.ch
}
