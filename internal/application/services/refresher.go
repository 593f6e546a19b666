package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market-data-service/internal/infrastructure/config"
	"market-data-service/internal/infrastructure/logging"
	"market-data-service/internal/infrastructure/metrics"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultRefreshWorkers   = 4
	DefaultRefreshQueueSize = 64
	DefaultRefreshTimeout   = 30 * time.Second
)

// Resultados de un refresco en segundo plano (label de métrica)
const (
	refreshScheduled = "scheduled"
	refreshDeduped   = "deduped"
	refreshDropped   = "dropped"
	refreshSuccess   = "success"
	refreshError     = "error"
)

// RefreshFunc actualiza una entrada de cache; ctx trae el timeout de la tarea
type RefreshFunc func(ctx context.Context) error

// FetchFunc es un refresco que además retorna el valor obtenido. Un Do
// sincrónico que se une a un refresco en curso de la misma clave recibe ese valor.
type FetchFunc func(ctx context.Context) (interface{}, error)

type refreshTask struct {
	key  string
	kind string
	run  FetchFunc
}

// Refresher ejecuta refrescos fire-and-forget en un pool acotado.
//
// Cada clave tiene a lo sumo un refresco encolado o corriendo: mientras la
// clave está en el set inflight, otro Schedule para la misma clave se descarta.
// El grupo singleflight se comparte con los fetch sincrónicos (Do) para que un
// miss y un refresco de la misma clave hagan una sola llamada al proveedor.
type Refresher struct {
	queue   chan refreshTask
	timeout time.Duration
	group   singleflight.Group

	mu       sync.Mutex
	inflight map[string]struct{}
	closed   bool

	wg sync.WaitGroup
}

// NewRefresher arranca cfg.Workers goroutines sobre una cola de cfg.QueueSize
func NewRefresher(cfg config.RefreshConfig) *Refresher {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultRefreshWorkers
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultRefreshQueueSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}

	r := &Refresher{
		queue:    make(chan refreshTask, queueSize),
		timeout:  timeout,
		inflight: make(map[string]struct{}),
	}

	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.worker()
	}
	return r
}

// Schedule encola un refresco para key. Retorna false si la clave ya tiene
// uno pendiente, si la cola está llena o si el refresher está cerrado.
func (r *Refresher) Schedule(key, kind string, fn RefreshFunc) bool {
	return r.ScheduleFetch(key, kind, func(ctx context.Context) (interface{}, error) {
		return nil, fn(ctx)
	})
}

// ScheduleFetch es Schedule para refrescos que comparten su resultado con Do
func (r *Refresher) ScheduleFetch(key, kind string, fn FetchFunc) bool {
	ctx := context.Background()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		metrics.RecordBackgroundRefresh(kind, refreshDropped)
		logging.Market().RefreshDropped(ctx, key, "refresher closed")
		return false
	}
	if _, ok := r.inflight[key]; ok {
		metrics.RecordBackgroundRefresh(kind, refreshDeduped)
		logging.Debug(ctx, "Background refresh already in flight", logging.Fields{
			logging.FieldCacheKey: key,
		})
		return false
	}

	select {
	case r.queue <- refreshTask{key: key, kind: kind, run: fn}:
		r.inflight[key] = struct{}{}
		metrics.RecordBackgroundRefresh(kind, refreshScheduled)
		return true
	default:
		metrics.RecordBackgroundRefresh(kind, refreshDropped)
		logging.Market().RefreshDropped(ctx, key, "queue full")
		return false
	}
}

// Do ejecuta fn deduplicando llamadas concurrentes con la misma clave
func (r *Refresher) Do(key string, fn func() (interface{}, error)) (interface{}, error) {
	v, err, _ := r.group.Do(key, fn)
	return v, err
}

// InFlight retorna cuántas claves tienen un refresco encolado o corriendo
func (r *Refresher) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}

// Close deja de aceptar tareas y espera a que las encoladas terminen
func (r *Refresher) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Refresher) worker() {
	defer r.wg.Done()
	for task := range r.queue {
		r.run(task)
	}
}

func (r *Refresher) run(task refreshTask) {
	defer func() {
		r.mu.Lock()
		delete(r.inflight, task.key)
		r.mu.Unlock()

		// un panic en una tarea no debe matar al worker
		if rec := recover(); rec != nil {
			metrics.RecordBackgroundRefresh(task.kind, refreshError)
			logging.Error(context.Background(), "Background refresh panicked", logging.Fields{
				logging.FieldRefreshKey: task.key,
				"panic":                 fmt.Sprint(rec),
			})
		}
	}()

	// contexto propio: el request que disparó el refresco ya respondió
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	ctx = logging.WithRequestID(ctx, logging.GenerateRequestID())

	start := time.Now()
	_, err := r.Do(task.key, func() (interface{}, error) {
		return task.run(ctx)
	})
	if err != nil {
		metrics.RecordBackgroundRefresh(task.kind, refreshError)
		logging.Market().RefreshFailed(ctx, task.key, err)
		return
	}

	metrics.RecordBackgroundRefresh(task.kind, refreshSuccess)
	logging.Debug(ctx, "Background refresh completed", logging.Fields{
		logging.FieldCacheKey: task.key,
		logging.FieldKind:     task.kind,
		logging.FieldDuration: float64(time.Since(start).Nanoseconds()) / 1e6,
	})
}
