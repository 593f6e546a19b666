package ratelimit

import (
	"context"
	"time"

	"market-data-service/internal/infrastructure/metrics"

	"golang.org/x/time/rate"
)

// Pacer garantiza un espaciado mínimo entre llamadas al proveedor.
// Es compartido por todo el proceso: batches concurrentes y refrescos
// en segundo plano esperan en la misma cola.
type Pacer struct {
	limiter *rate.Limiter
	delay   time.Duration
}

// NewPacer crea un pacer con una llamada cada delay; delay <= 0 no espera nunca
func NewPacer(delay time.Duration) *Pacer {
	if delay <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		delay:   delay,
	}
}

// Wait bloquea hasta el próximo turno o hasta que ctx se cancele
func (p *Pacer) Wait(ctx context.Context) error {
	start := time.Now()
	err := p.limiter.Wait(ctx)
	metrics.RecordPacingWait(time.Since(start).Seconds())
	return err
}

// Delay retorna el espaciado configurado
func (p *Pacer) Delay() time.Duration {
	return p.delay
}
