package scheduler

import (
	"container/heap"
	"time"
)

type timer struct {
	key      string
	when     time.Time
	callback Callback
	seq      uint64
	index    int

	dispatched bool // извлечен из очереди и ждет исполнителя
	canceled   bool
}

// timerQueue min-heap по времени срабатывания, при равенстве - по порядку регистрации
type timerQueue []*timer

var _ heap.Interface = (*timerQueue)(nil)

func (q timerQueue) Len() int {
	return len(q)
}

func (q timerQueue) Less(a, b int) bool {
	if q[a].when.Equal(q[b].when) {
		return q[a].seq < q[b].seq
	}
	return q[a].when.Before(q[b].when)
}

func (q timerQueue) Swap(a, b int) {
	q[a], q[b] = q[b], q[a]
	q[a].index = a
	q[b].index = b
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
