// Package ratelimit считает запросы по API ключу в минутном и дневном окнах.
// Минутное окно учитывает все методы, дневное только GET.
package ratelimit

import (
	"context"
	"time"
)

// Counter задает атомарный счетчик с истечением. Redis в проде, память в тестах.
type Counter interface {
	// Incr увеличивает счетчик ключа и возвращает новое значение.
	// TTL выставляется при создании ключа до конца текущего окна.
	Incr(ctx context.Context, key string, ttl time.Duration) (int, error)
}

// Budget задает лимиты окон
type Budget struct {
	MinuteLimit int
	DayLimit    int
}

// Decision содержит результат проверки лимитов для одного запроса
type Decision struct {
	Allowed     bool
	MinuteLimit int
	DayLimit    int
	MinuteUsed  int
	DayUsed     int
}

func (d *Decision) MinuteRemaining() int {
	if r := d.MinuteLimit - d.MinuteUsed; r > 0 {
		return r
	}
	return 0
}

func (d *Decision) DayRemaining() int {
	if r := d.DayLimit - d.DayUsed; r > 0 {
		return r
	}
	return 0
}

type Limiter struct {
	counter Counter
	budget  Budget
	now     func() time.Time
}

func NewLimiter(counter Counter, budget Budget) *Limiter {
	return &Limiter{counter: counter, budget: budget, now: time.Now}
}

// Allow регистрирует запрос и проверяет бюджеты. Политика count-then-reject:
// отклоненная попытка тоже учитывается, чтобы бесконечные ретраи не
// обнуляли окно.
func (l *Limiter) Allow(ctx context.Context, key string, isGet bool) (*Decision, error) {
	now := l.now()

	minuteUsed, err := l.counter.Incr(ctx, "rate_limit:"+key+":minute", untilWindowEnd(now, time.Minute))
	if err != nil {
		return nil, err
	}

	dayUsed := 0
	if isGet {
		dayUsed, err = l.counter.Incr(ctx, "rate_limit:"+key+":day", untilWindowEnd(now, 24*time.Hour))
		if err != nil {
			return nil, err
		}
	}

	d := &Decision{
		Allowed:     true,
		MinuteLimit: l.budget.MinuteLimit,
		DayLimit:    l.budget.DayLimit,
		MinuteUsed:  minuteUsed,
		DayUsed:     dayUsed,
	}
	if minuteUsed > l.budget.MinuteLimit {
		d.Allowed = false
	}
	if isGet && dayUsed > l.budget.DayLimit {
		d.Allowed = false
	}
	return d, nil
}

func untilWindowEnd(now time.Time, window time.Duration) time.Duration {
	return now.Truncate(window).Add(window).Sub(now)
}
