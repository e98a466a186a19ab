package week

import (
	"sync/atomic"
	"time"
)

// Holder shares one generated Calendar across handlers. Reads are
// lock-free; Regenerate swaps the whole sequence atomically so readers
// never observe a half-built calendar.
type Holder struct {
	current atomic.Pointer[Calendar]
}

func NewHolder(cal *Calendar) *Holder {
	h := &Holder{}
	h.current.Store(cal)
	return h
}

func (h *Holder) Calendar() *Calendar { return h.current.Load() }

// Regenerate rebuilds the sequence wholesale and replaces the shared
// calendar. The old value stays valid for readers that already hold it.
func (h *Holder) Regenerate(epoch, now time.Time, horizonMonths int) error {
	cal, err := Generate(epoch, now, horizonMonths)
	if err != nil {
		return err
	}
	h.current.Store(cal)
	return nil
}
