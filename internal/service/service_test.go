package service

import (
	"context"
	"errors"
	"sync"

	"github.com/Skotchmaster/storefront/internal/models"
)

type recordedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, recordedEvent{Topic: topic, Key: key, Event: event.(map[string]any)})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[uint]models.Item
	failAll bool
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[uint]models.Item{}} }

var errIndexDown = errors.New("index down")

func (f *fakeIndex) IndexItem(_ context.Context, item models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errIndexDown
	}
	f.docs[item.ID] = item
	return nil
}

func (f *fakeIndex) DeleteItem(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errIndexDown
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, q string, from, size int) (int64, []models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return 0, nil, errIndexDown
	}
	out := make([]models.Item, 0, len(f.docs))
	for _, it := range f.docs {
		if it.Title == q {
			out = append(out, it)
		}
	}
	return int64(len(out)), out, nil
}
