package scheduler

import (
	"container/heap"
	"context"
	apperrors "docflow-backend/lib/utils/app-errors"
	"docflow-backend/lib/utils/clock"
	"docflow-backend/lib/utils/lock"
	"runtime/debug"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const DefaultPoolSize = 10

type Callback func(ctx context.Context)

// Provider планировщик отложенных задач по ключу.
// На каждый ключ не более одного ожидающего таймера и не более одного одновременного срабатывания.
// Срабатывание "мягкое": при занятом пуле задача выполняется позже назначенного времени.
type Provider interface {
	ScheduleAt(key string, when time.Time, callback Callback) error
	Cancel(key string) bool
	Pending() int
	Stop()
}

type Config struct {
	PoolSize   int
	MaxPending int // 0 - без ограничения
	Clock      clock.Clock
}

func NewInstance(ctx context.Context, cfg Config) Provider {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultPoolSize
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	ctx, cancel := context.WithCancel(ctx)
	i := &impl{
		clock:      cfg.Clock,
		maxPending: cfg.MaxPending,
		byKey:      map[string]*timer{},
		wake:       make(chan struct{}, 1),
		jobs:       make(chan *timer),
		keyLocks:   lock.NewKeyMutex(),
		ctx:        ctx,
		cancel:     cancel,
	}
	i.wg.Add(cfg.PoolSize + 1)
	go i.dispatch()
	for n := 0; n < cfg.PoolSize; n++ {
		go i.work()
	}
	return i
}

type impl struct {
	mu         sync.Mutex
	queue      timerQueue
	byKey      map[string]*timer
	seq        uint64
	clock      clock.Clock
	maxPending int

	wake     chan struct{}
	jobs     chan *timer
	keyLocks *lock.KeyMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (i *impl) getLogger(key string) *log.Entry {
	return log.
		WithField("component", "deadline_scheduler").
		WithField("key", key)
}

func (i *impl) ScheduleAt(key string, when time.Time, callback Callback) error {
	if callback == nil {
		return apperrors.InvalidArgument("не указан обработчик для таймера %v", key)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ctx.Err() != nil {
		return apperrors.Unavailable("планировщик остановлен")
	}
	prev, replace := i.byKey[key]
	if !replace && i.maxPending > 0 && len(i.byKey) >= i.maxPending {
		return apperrors.Unavailable("превышено количество ожидающих таймеров (%v)", i.maxPending)
	}
	if replace {
		i.drop(prev)
	}
	i.seq++
	t := &timer{
		key:      key,
		when:     when,
		callback: callback,
		seq:      i.seq,
	}
	heap.Push(&i.queue, t)
	i.byKey[key] = t
	i.signal()
	return nil
}

func (i *impl) Cancel(key string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	t, ok := i.byKey[key]
	if !ok {
		// уже выполняется, сработал или не был зарегистрирован
		return false
	}
	i.drop(t)
	i.signal()
	return true
}

// drop снимает регистрацию таймера, вызывается под i.mu.
// Таймер, уже переданный диспетчером, но не взятый исполнителем, только помечается.
func (i *impl) drop(t *timer) {
	if t.dispatched {
		t.canceled = true
	} else {
		heap.Remove(&i.queue, t.index)
	}
	delete(i.byKey, t.key)
}

// take исполнитель забирает таймер, с этого момента отмена невозможна
func (i *impl) take(t *timer) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if t.canceled {
		return false
	}
	if i.byKey[t.key] == t {
		delete(i.byKey, t.key)
	}
	return true
}

func (i *impl) Pending() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.byKey)
}

func (i *impl) Stop() {
	i.cancel()
	i.wg.Wait()
}

func (i *impl) signal() {
	select {
	case i.wake <- struct{}{}:
	default:
	}
}

func (i *impl) dispatch() {
	defer i.wg.Done()
	for {
		i.mu.Lock()
		now := i.clock.Now()
		var due []*timer
		for len(i.queue) > 0 && !i.queue[0].when.After(now) {
			t := heap.Pop(&i.queue).(*timer)
			// до передачи исполнителю таймер остается зарегистрированным по ключу
			t.dispatched = true
			due = append(due, t)
		}
		var wait <-chan time.Time
		if len(due) == 0 && len(i.queue) > 0 {
			wait = i.clock.At(i.queue[0].when)
		}
		i.mu.Unlock()

		if len(due) > 0 {
			for _, t := range due {
				// при занятом пуле ждём свободного исполнителя
				select {
				case i.jobs <- t:
				case <-i.ctx.Done():
					return
				}
			}
			continue
		}

		select {
		case <-i.ctx.Done():
			return
		case <-i.wake:
		case <-wait:
		}
	}
}

func (i *impl) work() {
	defer i.wg.Done()
	for {
		select {
		case <-i.ctx.Done():
			return
		case t := <-i.jobs:
			if i.take(t) {
				i.fire(t)
			}
		}
	}
}

func (i *impl) fire(t *timer) {
	unlock := i.keyLocks.Lock(t.key)
	defer unlock()
	defer func() {
		if r := recover(); r != nil {
			i.getLogger(t.key).
				WithField("panic_stack", string(debug.Stack())).
				Errorf("panic: (%v)", r)
		}
	}()
	lateness := i.clock.Now().Sub(t.when)
	if lateness > time.Second {
		i.getLogger(t.key).
			WithField("lateness", lateness.String()).
			Warn("Таймер сработал с опозданием")
	}
	t.callback(i.ctx)
}
