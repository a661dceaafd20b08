package lock

import (
	"sync"
)

// KeyMutex таблица блокировок по ключу (ид записи).
// Записи с разными ключами не блокируют друг друга, запись в таблице живёт пока есть владелец или ожидающие.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyMutex() *KeyMutex {
	return &KeyMutex{
		locks: map[string]*keyLock{},
	}
}

// Lock захватывает блокировку по ключу, возвращает функцию освобождения
func (m *KeyMutex) Lock(key string) (unlock func()) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	once := sync.Once{}
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			m.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(m.locks, key)
			}
			m.mu.Unlock()
		})
	}
}

// Size кол-во ключей, по которым есть владелец или ожидающие
func (m *KeyMutex) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
