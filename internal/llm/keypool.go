package llm

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// KeyPool tracks which API keys are currently rate limited. A key marked
// limited is skipped until its cooldown has passed.
type KeyPool struct {
	mu       sync.Mutex
	primary  string
	backups  []string
	cooldown time.Duration
	limited  map[string]time.Time
	now      func() time.Time
	intn     func(n int) int
}

// KeyPoolOption configures a KeyPool.
type KeyPoolOption func(*KeyPool)

// WithPoolClock overrides the pool's time source.
func WithPoolClock(now func() time.Time) KeyPoolOption {
	return func(p *KeyPool) { p.now = now }
}

// WithPoolRand overrides how a random available backup key is chosen.
func WithPoolRand(intn func(n int) int) KeyPoolOption {
	return func(p *KeyPool) { p.intn = intn }
}

// NewKeyPool creates a pool with a primary key and backup keys. Empty and
// duplicate keys are dropped.
func NewKeyPool(primary string, backups []string, cooldown time.Duration, opts ...KeyPoolOption) *KeyPool {
	p := &KeyPool{
		primary:  strings.TrimSpace(primary),
		cooldown: cooldown,
		limited:  make(map[string]time.Time),
		now:      time.Now,
		intn:     rand.IntN,
	}
	seen := map[string]bool{p.primary: true}
	for _, k := range backups {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		p.backups = append(p.backups, k)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the number of distinct keys in the pool.
func (p *KeyPool) Size() int {
	n := len(p.backups)
	if p.primary != "" {
		n++
	}
	return n
}

func (p *KeyPool) availableLocked(key string, now time.Time) bool {
	at, ok := p.limited[key]
	return !ok || now.Sub(at) > p.cooldown
}

// Acquire picks the key for the next call: the primary key when it is not
// cooling down, else a random available backup key, else the backup key
// that was limited longest ago.
func (p *KeyPool) Acquire() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.primary != "" && p.availableLocked(p.primary, now) {
		return p.primary
	}

	var available []string
	for _, k := range p.backups {
		if p.availableLocked(k, now) {
			available = append(available, k)
		}
	}
	if len(available) > 0 {
		return available[p.intn(len(available))]
	}

	candidates := p.backups
	if len(candidates) == 0 {
		return p.primary
	}
	oldest := candidates[0]
	for _, k := range candidates[1:] {
		if p.limited[k].Before(p.limited[oldest]) {
			oldest = k
		}
	}
	return oldest
}

// MarkLimited starts the cooldown of key.
func (p *KeyPool) MarkLimited(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limited[key] = p.now()
}

// Available reports whether key is outside its cooldown.
func (p *KeyPool) Available(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.availableLocked(key, p.now())
}
