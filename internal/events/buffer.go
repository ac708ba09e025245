package events

import "sync"

type message struct {
	Kind string
	Data []byte
	prev *message
}

// buffer is a FIFO linked list shared between producing callers and the
// consuming goroutine; every accessor holds the lock.
type buffer struct {
	lock sync.Mutex
	head *message
	tail *message
	size int
}

func newBuffer() *buffer {
	return &buffer{}
}

// PushBack appends msg and returns the size the buffer had before the
// append, so the caller can decide atomically whether the consumer needs a
// wakeup.
func (b *buffer) PushBack(msg *message) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.head == nil {
		b.head = msg
		b.tail = msg
	} else {
		b.tail.prev = msg
		b.tail = msg
	}
	prevSize := b.size
	b.size++

	return prevSize, nil
}

func (b *buffer) Pop() *message {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.head == nil {
		return nil
	}
	tmp := b.head
	if b.head.prev != nil {
		b.head = b.head.prev
	} else {
		// removing the last one
		b.head = nil
		b.tail = nil
	}
	b.size--
	return tmp
}

func (b *buffer) Size() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.size
}
