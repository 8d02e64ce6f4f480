package workflow

import (
	"sync"
)

// Session-scoped refresh signaling: assistant edits and imports publish the
// topic of what changed so open dashboard views refetch. An explicit
// observer registry, not shared mutable state.

type RefreshTopic string

const (
	TopicDocuments     RefreshTopic = "documents"
	TopicInvoices      RefreshTopic = "invoices"
	TopicHRCosts       RefreshTopic = "hr_costs"
	TopicSoftwareCosts RefreshTopic = "software_costs"
	TopicContracts     RefreshTopic = "contracts"
)

type EventBus struct {
	mu          sync.RWMutex
	subscribers map[RefreshTopic]map[int]func(RefreshTopic)
	nextId      int
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: map[RefreshTopic]map[int]func(RefreshTopic){},
	}
}

// Subscribe registers a callback and returns an unsubscribe func.
func (b *EventBus) Subscribe(topic RefreshTopic, fn func(RefreshTopic)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextId++
	id := b.nextId
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = map[int]func(RefreshTopic){}
	}
	b.subscribers[topic][id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers[topic], id)
	}
}

func (b *EventBus) Publish(topics ...RefreshTopic) {
	b.mu.RLock()
	var callbacks []func(RefreshTopic)
	var callbackTopics []RefreshTopic
	for _, topic := range topics {
		for _, fn := range b.subscribers[topic] {
			callbacks = append(callbacks, fn)
			callbackTopics = append(callbackTopics, topic)
		}
	}
	b.mu.RUnlock()

	// invoked outside the lock so a subscriber may unsubscribe itself
	for i, fn := range callbacks {
		fn(callbackTopics[i])
	}
}

var defaultBus = NewEventBus()

func Bus() *EventBus {
	return defaultBus
}
