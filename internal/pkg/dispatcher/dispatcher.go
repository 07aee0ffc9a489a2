package dispatcher

import "sync"

// Bus fans one device-originated change notification out to every live
// subscription for that device identity. The underlying protocol does not
// say which zone changed, so all of a device's subscribers are notified on
// any change and recompute their full view; the recomputation is idempotent
// so no change detection happens here.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]func()
}

// Subscription binds one observer to one device's notification stream.
type Subscription struct {
	bus      *Bus
	deviceID string
}

func New() *Bus {
	return &Bus{
		subs: make(map[string]map[*Subscription]func()),
	}
}

// Subscribe registers an observer for a device identity. The subscription
// does not receive events published strictly before it was registered.
// The update callback must not call back into Subscribe or Unsubscribe.
func (b *Bus) Subscribe(deviceID string, update func()) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[deviceID] == nil {
		b.subs[deviceID] = make(map[*Subscription]func())
	}
	sub := &Subscription{bus: b, deviceID: deviceID}
	b.subs[deviceID][sub] = update
	return sub
}

// Publish delivers one event to every current subscriber of the device,
// exactly once each. Delivery holds the subscriber set stable, so an
// Unsubscribe racing with Publish blocks until delivery completes.
func (b *Bus) Publish(deviceID string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, update := range b.subs[deviceID] {
		update()
	}
}

// Subscribers reports how many live subscriptions a device has.
func (b *Bus) Subscribers(deviceID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[deviceID])
}

// Unsubscribe tears the subscription down. When it returns, no notification
// is in flight to this observer and none will be delivered afterwards, even
// if a publish raced the teardown. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	delete(s.bus.subs[s.deviceID], s)
	if len(s.bus.subs[s.deviceID]) == 0 {
		delete(s.bus.subs, s.deviceID)
	}
}
