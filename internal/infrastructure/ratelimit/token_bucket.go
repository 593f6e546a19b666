package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultRequestsPerSecond = 10
	DefaultBurst             = 20

	// clientes sin actividad por más de idleTTL se descartan
	idleTTL         = 30 * time.Minute
	cleanupInterval = 10 * time.Minute
)

// clientBucket es el token bucket de un cliente más su último uso
type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiters mantiene un token bucket por cliente
type ClientLimiters struct {
	mu          sync.Mutex
	buckets     map[string]*clientBucket
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
	now         func() time.Time
}

// NewClientLimiters crea la colección; rps <= 0 o burst <= 0 usan los defaults
func NewClientLimiters(rps float64, burst int) *ClientLimiters {
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &ClientLimiters{
		buckets:     make(map[string]*clientBucket),
		limit:       rate.Limit(rps),
		burst:       burst,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow consume un token del cliente si hay disponible
func (c *ClientLimiters) Allow(clientID string) bool {
	now := c.now()
	return c.bucket(clientID, now).AllowN(now, 1)
}

// RetryAfter estima cuánto falta para el próximo token del cliente
func (c *ClientLimiters) RetryAfter(clientID string) time.Duration {
	now := c.now()
	r := c.bucket(clientID, now).ReserveN(now, 1)
	if !r.OK() {
		return time.Second
	}
	delay := r.DelayFrom(now)
	// solo consultamos, no consumimos
	r.CancelAt(now)
	return delay
}

// Clients retorna la cantidad de clientes con bucket activo
func (c *ClientLimiters) Clients() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets)
}

func (c *ClientLimiters) bucket(clientID string, now time.Time) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buckets[clientID]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.buckets[clientID] = b
	}
	b.lastSeen = now

	c.maybeCleanup(now)
	return b.limiter
}

// maybeCleanup requiere c.mu tomado
func (c *ClientLimiters) maybeCleanup(now time.Time) {
	if now.Sub(c.lastCleanup) < cleanupInterval {
		return
	}
	cutoff := now.Add(-idleTTL)
	for id, b := range c.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(c.buckets, id)
		}
	}
	c.lastCleanup = now
}

// Stats returns statistics about the limiter collection
func (c *ClientLimiters) Stats() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]interface{}{
		"total_clients":       len(c.buckets),
		"requests_per_second": float64(c.limit),
		"burst":               c.burst,
	}
}
