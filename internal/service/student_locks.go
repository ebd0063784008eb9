package service

import "sync"

// studentLocks hands out one mutex per student so profile read-modify-write
// cycles for the same student are serialized while different students
// proceed in parallel.
type studentLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newStudentLocks() *studentLocks {
	return &studentLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *studentLocks) lock(studentID uint) func() {
	l.mu.Lock()
	lock, ok := l.locks[studentID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[studentID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
