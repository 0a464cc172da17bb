// Package live turns local store writes into observable query results.
//
// Repositories call Notifier.Publish after every committed write; Watch
// re-runs a query for each notification and pushes the result to the
// caller until its context is cancelled.
package live

import "sync"

// Topic names a group of rows whose changes are reported together.
type Topic string

const (
	TopicEvents Topic = "events"
	TopicUsers  Topic = "users"
)

// Notifier fans change notifications out to subscribers. Notifications are
// coalesced: a subscriber that has not consumed the previous signal does not
// get a second one. The zero value is not usable; a nil *Notifier ignores
// publishes.
type Notifier struct {
	mu   sync.Mutex
	subs map[Topic]map[chan struct{}]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[Topic]map[chan struct{}]struct{})}
}

// Subscribe registers interest in topic. The returned cancel func must be
// called to release the subscription.
func (n *Notifier) Subscribe(topic Topic) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	set, ok := n.subs[topic]
	if !ok {
		set = make(map[chan struct{}]struct{})
		n.subs[topic] = set
	}
	set[ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs[topic], ch)
			if len(n.subs[topic]) == 0 {
				delete(n.subs, topic)
			}
			n.mu.Unlock()
		})
	}
}

// Publish signals every subscriber of topic without blocking.
func (n *Notifier) Publish(topic Topic) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (n *Notifier) subscribers(topic Topic) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[topic])
}
