package workflow

import (
	"sync"
	"testing"
)

func TestEventBus_PublishReachesSubscribers(t *testing.T) {
	bus := NewEventBus()
	var got []RefreshTopic
	bus.Subscribe(TopicInvoices, func(topic RefreshTopic) {
		got = append(got, topic)
	})

	bus.Publish(TopicInvoices)
	bus.Publish(TopicDocuments) // different topic, must not fire

	if len(got) != 1 || got[0] != TopicInvoices {
		t.Fatalf("received %v, want exactly one invoices event", got)
	}
}

func TestEventBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	unsubscribe := bus.Subscribe(TopicHRCosts, func(RefreshTopic) { calls++ })

	bus.Publish(TopicHRCosts)
	unsubscribe()
	bus.Publish(TopicHRCosts)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1 after unsubscribe", calls)
	}
}

func TestEventBus_ConcurrentPublish(t *testing.T) {
	bus := NewEventBus()
	var mu sync.Mutex
	calls := 0
	bus.Subscribe(TopicSoftwareCosts, func(RefreshTopic) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(TopicSoftwareCosts)
		}()
	}
	wg.Wait()

	if calls != 20 {
		t.Fatalf("calls = %d, want 20", calls)
	}
}
