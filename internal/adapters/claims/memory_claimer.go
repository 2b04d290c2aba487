package claims

import (
	"context"
	"errors"
	"route-assignment-service/internal/ports"
	"sync"
	"time"
)

type claim struct {
	owner   string
	expires time.Time
}

// MemoryClaimer implements ports.OrderClaimer within a single process.
// Used when no Redis is configured. A live claim blocks every owner,
// including the one holding it.
type MemoryClaimer struct {
	mu     sync.Mutex
	ttl    time.Duration
	claims map[int64]claim
	now    func() time.Time
}

func NewMemoryClaimer(ttl time.Duration) *MemoryClaimer {
	return &MemoryClaimer{
		ttl:    ttl,
		claims: make(map[int64]claim),
		now:    time.Now,
	}
}

func (m *MemoryClaimer) Claim(
	_ context.Context,
	owner string,
	ids []int64,
) (func(context.Context), error) {
	if owner == "" {
		return nil, errors.New("memory claim: owner is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, id := range ids {
		if c, ok := m.claims[id]; ok && now.Before(c.expires) {
			return nil, ports.ErrOrdersClaimed
		}
	}

	expires := now.Add(m.ttl)
	for _, id := range ids {
		m.claims[id] = claim{owner: owner, expires: expires}
	}

	held := append([]int64(nil), ids...)
	release := func(context.Context) {
		m.mu.Lock()
		defer m.mu.Unlock()

		for _, id := range held {
			if c, ok := m.claims[id]; ok && c.owner == owner {
				delete(m.claims, id)
			}
		}
	}

	return release, nil
}
