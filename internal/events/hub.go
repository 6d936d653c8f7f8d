// Package events is the in-process change feed behind the live dashboards.
package events

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type ChangeType string

const (
	Created ChangeType = "created"
	Updated ChangeType = "updated"
	Deleted ChangeType = "deleted"
)

const AdminTopic = "admin"

func ContractorTopic(contractorID string) string { return "contractor:" + contractorID }

func DriverTopic(driverID string) string { return "driver:" + driverID }

// Change describes one committed write.
type Change struct {
	Collection   string     `json:"collection"`
	DocumentID   string     `json:"documentId"`
	Type         ChangeType `json:"type"`
	ContractorID string     `json:"contractorId,omitempty"`
	DriverID     string     `json:"driverId,omitempty"`
	At           time.Time  `json:"at"`
}

// Topics lists every topic the change is delivered to.
func (c Change) Topics() []string {
	topics := []string{AdminTopic}
	if c.ContractorID != "" {
		topics = append(topics, ContractorTopic(c.ContractorID))
	}
	if c.DriverID != "" {
		topics = append(topics, DriverTopic(c.DriverID))
	}
	return topics
}

type Listener func(Change)

// Hub fans changes out to listeners. Listeners run on the publishing
// goroutine and must not block.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	topics map[string]map[int]Listener
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[int]Listener)}
}

// Subscribe registers fn for topic. The returned function removes the
// listener; it must be called when the subscriber goes away, and calling it
// more than once is harmless.
func (h *Hub) Subscribe(topic string, fn Listener) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[int]Listener)
	}
	h.topics[topic][id] = fn
	h.mu.Unlock()

	logrus.WithFields(logrus.Fields{"topic": topic, "listener": id}).Debug("listener subscribed")

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if listeners, ok := h.topics[topic]; ok {
				delete(listeners, id)
				if len(listeners) == 0 {
					delete(h.topics, topic)
				}
			}
			logrus.WithFields(logrus.Fields{"topic": topic, "listener": id}).Debug("listener unsubscribed")
		})
	}
}

func (h *Hub) Publish(c Change) {
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}

	var listeners []Listener
	h.mu.RLock()
	for _, topic := range c.Topics() {
		for _, fn := range h.topics[topic] {
			listeners = append(listeners, fn)
		}
	}
	h.mu.RUnlock()

	for _, fn := range listeners {
		fn(c)
	}
}

// Subscribers reports how many listeners are registered for topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
