package ingest

import (
	"context"
	"sync"

	"github.com/salestream/ingest/internal/events"
	"github.com/salestream/ingest/internal/store"
)

// fakeObjectStore is an in-memory object store. Error queues let tests
// script transient and fatal failures per operation.
type fakeObjectStore struct {
	lock     sync.Mutex
	bucket   string
	objects  map[string][]byte
	metadata map[string]map[string]string

	getErrs  []error
	putErrs  []error
	listErrs []error
	statErrs []error

	putCalls int
	getCalls int
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		bucket:   "sales-data",
		objects:  make(map[string][]byte),
		metadata: make(map[string]map[string]string),
	}
}

func popErr(queue *[]error) error {
	if len(*queue) == 0 {
		return nil
	}
	err := (*queue)[0]
	*queue = (*queue)[1:]
	return err
}

func (f *fakeObjectStore) Bucket() string {
	return f.bucket
}

func (f *fakeObjectStore) GetObject(_ context.Context, key string) ([]byte, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.getCalls++
	if err := popErr(&f.getErrs); err != nil {
		return nil, err
	}
	body, ok := f.objects[key]
	if !ok {
		return nil, store.ErrObjectNotFound
	}
	return body, nil
}

func (f *fakeObjectStore) PutObject(_ context.Context, key string, body []byte, _ string, metadata map[string]string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.putCalls++
	if err := popErr(&f.putErrs); err != nil {
		return err
	}
	f.objects[key] = body
	f.metadata[key] = metadata
	return nil
}

func (f *fakeObjectStore) ListObjects(_ context.Context, prefix string, max int) ([]string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if err := popErr(&f.listErrs); err != nil {
		return nil, err
	}
	var keys []string
	for key := range f.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
			if max > 0 && len(keys) >= max {
				break
			}
		}
	}
	return keys, nil
}

func (f *fakeObjectStore) StatObject(_ context.Context, key string) (store.ObjectInfo, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if err := popErr(&f.statErrs); err != nil {
		return store.ObjectInfo{}, err
	}
	body, ok := f.objects[key]
	if !ok {
		return store.ObjectInfo{}, store.ErrObjectNotFound
	}
	return store.ObjectInfo{
		Key:      key,
		Size:     int64(len(body)),
		Metadata: f.metadata[key],
	}, nil
}

func (f *fakeObjectStore) keysWithPrefix(prefix string) []string {
	keys, _ := f.ListObjects(context.Background(), prefix, 0)
	return keys
}

// fakePublisher captures completion events; failNext scripts one publish
// failure.
type fakePublisher struct {
	lock     sync.Mutex
	events   []events.ProcessingCompleteEvent
	failNext error
}

func (f *fakePublisher) PublishProcessingComplete(_ context.Context, ev events.ProcessingCompleteEvent) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) published() []events.ProcessingCompleteEvent {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]events.ProcessingCompleteEvent{}, f.events...)
}
