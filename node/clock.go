package node

import (
	"github.com/kurumiimari/hammer/log"
	"gopkg.in/tomb.v2"
	"sync"
	"time"
)

var clockLogger = log.ModuleLogger("round-clock")

// RoundClock advances the ledger's rounds on a wall-clock interval and
// notifies subscribers of every new round.
type RoundClock struct {
	tmb      *tomb.Tomb
	interval time.Duration
	advance  func(n uint64) (uint64, error)
	subs     []chan uint64
	mtx      sync.RWMutex
	dead     bool
}

func NewRoundClock(tmb *tomb.Tomb, interval time.Duration, advance func(n uint64) (uint64, error)) *RoundClock {
	return &RoundClock{
		tmb:      tmb,
		interval: interval,
		advance:  advance,
	}
}

func (c *RoundClock) Start() {
	c.tmb.Go(func() error {
		var tickC <-chan time.Time
		if c.interval > 0 {
			tick := time.NewTicker(c.interval)
			defer tick.Stop()
			tickC = tick.C
		}

		for {
			select {
			case <-tickC:
				if _, err := c.Advance(1); err != nil {
					clockLogger.Error("error advancing round", "err", err)
				}
			case <-c.tmb.Dying():
				c.mtx.Lock()
				c.dead = true
				for _, sub := range c.subs {
					close(sub)
				}
				c.subs = nil
				c.mtx.Unlock()
				return nil
			}
		}
	})
}

// Advance moves the clock n rounds forward.
func (c *RoundClock) Advance(n uint64) (uint64, error) {
	round, err := c.advance(n)
	if err != nil {
		return 0, err
	}

	c.mtx.RLock()
	defer c.mtx.RUnlock()
	for _, sub := range c.subs {
		select {
		case sub <- round:
		default:
			clockLogger.Warning("dropping round notification", "round", round)
		}
	}
	return round, nil
}

func (c *RoundClock) Subscribe() <-chan uint64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.dead {
		panic("round clock is closed")
	}

	ch := make(chan uint64, 16)
	c.subs = append(c.subs, ch)
	return ch
}
