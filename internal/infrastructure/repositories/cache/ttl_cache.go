package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/metrics"
)

const (
	DefaultMaxEntries = 1000
	DefaultTTL        = 60 * time.Second
)

// cacheItem representa un elemento en el cache con su valor y tiempo de expiración
type cacheItem[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// isExpired verifica si el item ha expirado
func (item *cacheItem[V]) isExpired(now time.Time) bool {
	return now.After(item.expiresAt)
}

// Options configura el cache
type Options struct {
	MaxEntries int
	DefaultTTL time.Duration
	// Name etiqueta las métricas (quote, history, ...)
	Name string
}

// Option modifica un TTLCache al construirlo
type Option func(*config)

type config struct {
	now func() time.Time
}

// WithClock reemplaza el reloj; los tests simulan el paso del tiempo así
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// TTLCache implementa interfaces.StaleCache en memoria con expiración por
// entrada y desalojo LRU cuando se supera MaxEntries.
// Un único mutex protege el mapa y la lista; cada operación es atómica.
type TTLCache[V any] struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List // frente = usado más recientemente
	maxEntries int
	defaultTTL time.Duration
	name       string
	now        func() time.Time
}

var _ interfaces.StaleCache[int] = (*TTLCache[int])(nil)

// NewTTLCache crea una nueva instancia de cache en memoria
func NewTTLCache[V any](opts Options, options ...Option) *TTLCache[V] {
	cfg := config{now: time.Now}
	for _, o := range options {
		o(&cfg)
	}

	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTTL
	}
	if opts.Name == "" {
		opts.Name = "default"
	}

	return &TTLCache[V]{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: opts.MaxEntries,
		defaultTTL: opts.DefaultTTL,
		name:       opts.Name,
		now:        cfg.now,
	}
}

// Get obtiene un valor vivo; una entrada expirada se purga y se reporta ausente
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}

	item := el.Value.(*cacheItem[V])
	if item.isExpired(c.now()) {
		c.removeElement(el)
		metrics.RecordCacheEviction("expired", 1)
		return zero, false
	}

	c.order.MoveToFront(el)
	return item.value, true
}

// GetAllowStale obtiene el valor aunque haya expirado; no purga
func (c *TTLCache[V]) GetAllowStale(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}

	c.order.MoveToFront(el)
	return el.Value.(*cacheItem[V]).value, true
}

// IsFresh indica si la clave existe y no expiró
func (c *TTLCache[V]) IsFresh(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	return !el.Value.(*cacheItem[V]).isExpired(c.now())
}

// Lookup retorna el valor (aunque esté vencido) junto con su estado
func (c *TTLCache[V]) Lookup(key string) (V, interfaces.CacheState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, interfaces.CacheMiss
	}

	c.order.MoveToFront(el)
	item := el.Value.(*cacheItem[V])
	if item.isExpired(c.now()) {
		return item.value, interfaces.CacheStale
	}
	return item.value, interfaces.CacheFresh
}

// Set almacena un valor; ttl <= 0 usa el TTL por defecto
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)

	if el, ok := c.items[key]; ok {
		item := el.Value.(*cacheItem[V])
		item.value = value
		item.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&cacheItem[V]{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	})

	evicted := 0
	for c.order.Len() > c.maxEntries {
		c.removeElement(c.order.Back())
		evicted++
	}
	if evicted > 0 {
		metrics.RecordCacheEviction("lru", evicted)
	}
	metrics.UpdateCacheEntries(c.name, c.order.Len())
}

// Delete elimina un valor del cache
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// DeletePrefix elimina todas las claves que empiezan con prefix
func (c *TTLCache[V]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, el := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.removeElement(el)
			removed++
		}
	}
	if removed > 0 {
		metrics.RecordCacheEviction("purge", removed)
		metrics.UpdateCacheEntries(c.name, c.order.Len())
	}
	return removed
}

// Len retorna el número de entradas, vencidas incluidas
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Keys retorna las claves de la más a la menos reciente
func (c *TTLCache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*cacheItem[V]).key)
	}
	return keys
}

// Purge vacía el cache
func (c *TTLCache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.order.Len()
	c.items = make(map[string]*list.Element)
	c.order.Init()
	if n > 0 {
		metrics.RecordCacheEviction("purge", n)
	}
	metrics.UpdateCacheEntries(c.name, 0)
}

// removeElement requiere c.mu tomado
func (c *TTLCache[V]) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*cacheItem[V]).key)
}
