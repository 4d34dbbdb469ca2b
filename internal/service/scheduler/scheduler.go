// Пакет scheduler управляет циклами конвейера.
// Цикл - повторяющаяся единица работы одного этапа: таймер и сигнал
// пробуждения слиты в один поток триггеров, выполнение строго
// однократное (single-flight) - триггер во время работы отбрасывается.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Scheduler struct {
	cycles  []*Cycle
	zaplog  *zap.Logger
	cancel  context.CancelFunc
	group   *errgroup.Group
	started *atomic.Bool
	stopped *atomic.Bool
}

func NewScheduler(zaplog *zap.Logger) *Scheduler {
	return &Scheduler{
		zaplog:  zaplog,
		started: atomic.NewBool(false),
		stopped: atomic.NewBool(false),
	}
}

type Cycle struct {
	name         string
	initialDelay time.Duration
	period       time.Duration
	run          func(ctx context.Context)
	wake         chan struct{}
	zaplog       *zap.Logger
}

// AddCycle регистрирует цикл. Вызывать до Start
func (s *Scheduler) AddCycle(name string, initialDelay time.Duration, period time.Duration, run func(ctx context.Context)) *Cycle {
	cycle := &Cycle{
		name:         name,
		initialDelay: initialDelay,
		period:       period,
		run:          run,
		wake:         make(chan struct{}, 1),
		zaplog:       s.zaplog,
	}
	s.cycles = append(s.cycles, cycle)
	return cycle
}

// Wake запускает цикл немедленно, не дожидаясь таймера.
// Если цикл занят, сигнал отбрасывается
func (c *Cycle) Wake() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Start() {
	if s.stopped.Load() {
		return
	}
	if !s.started.CAS(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.group, ctx = errgroup.WithContext(ctx)

	for _, cycle := range s.cycles {
		cycle := cycle
		s.group.Go(func() error {
			cycle.loop(ctx)
			return nil
		})
	}
}

// Stop останавливает таймеры и ждет завершения текущих выполнений.
// Идемпотентен, безопасен без предшествующего Start
func (s *Scheduler) Stop() {
	if !s.stopped.CAS(false, true) {
		return
	}
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.group.Wait()
}

func (c *Cycle) loop(ctx context.Context) {
	// у каждого цикла своя начальная задержка
	timer := time.NewTimer(c.initialDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	case <-c.wake:
	}

	ticker := time.NewTicker(c.period)
	defer ticker.Stop()
	for {
		c.execute(ctx)
		// триггеры, накопившиеся за время работы, отбрасываются
		c.drain(ticker)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-c.wake:
		}
	}
}

// execute выполняет один проход цикла. Сбой одного выполнения
// не должен останавливать расписание
func (c *Cycle) execute(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.zaplog.Error("cycle execution failed",
				zap.String("cycle", c.name),
				zap.Any("panic", r))
		}
	}()
	c.run(ctx)
}

func (c *Cycle) drain(ticker *time.Ticker) {
	for {
		select {
		case <-ticker.C:
		case <-c.wake:
		default:
			return
		}
	}
}
