package feeds

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Snapshot is a read-only copy of the latest feed contents.
type Snapshot struct {
	NEOs      []NEO      `json:"neos"`
	Fireballs []Fireball `json:"fireballs"`
	Updated   time.Time  `json:"updated"`
	LastError string     `json:"last_error,omitempty"`
}

// LatestFireball returns the newest fireball, if any.
func (s Snapshot) LatestFireball() (Fireball, bool) {
	if len(s.Fireballs) == 0 {
		return Fireball{}, false
	}
	return s.Fireballs[0], true
}

// Board holds the latest snapshot. A failed fetch keeps the previous list of that feed.
type Board struct {
	client *Client
	mu     sync.RWMutex
	snap   Snapshot
}

// NewBoard returns an empty board fed by client.
func NewBoard(client *Client) *Board {
	return &Board{client: client}
}

// Snapshot returns a copy of the current contents.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := b.snap
	s.NEOs = append([]NEO(nil), b.snap.NEOs...)
	s.Fireballs = append([]Fireball(nil), b.snap.Fireballs...)
	return s
}

// Refresh fetches both feeds. Failures are logged, returned, and leave the previous data in place.
func (b *Board) Refresh(ctx context.Context) error {
	neos, neoErr := b.client.NEOs(ctx)
	fireballs, fbErr := b.client.Fireballs(ctx)
	err := errors.Join(neoErr, fbErr)

	b.mu.Lock()
	defer b.mu.Unlock()
	if neoErr == nil {
		b.snap.NEOs = neos
	}
	if fbErr == nil {
		b.snap.Fireballs = fireballs
	}
	if neoErr == nil || fbErr == nil {
		b.snap.Updated = b.client.now().UTC()
	}
	if err != nil {
		b.snap.LastError = err.Error()
		b.client.logger.Log("level", "warning", "status", "fetch failed", "err", err)
	} else {
		b.snap.LastError = ""
		b.client.logger.Log("level", "info", "neos", len(neos), "fireballs", len(fireballs))
	}
	return err
}

// Poll refreshes the board now and then every interval until ctx is done.
func (b *Board) Poll(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	b.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Refresh(ctx)
		}
	}
}
