package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesMatchingTopics(t *testing.T) {
	hub := NewHub()

	var admin, contractor, driver, other []Change
	defer hub.Subscribe(AdminTopic, func(c Change) { admin = append(admin, c) })()
	defer hub.Subscribe(ContractorTopic("c1"), func(c Change) { contractor = append(contractor, c) })()
	defer hub.Subscribe(DriverTopic("d1"), func(c Change) { driver = append(driver, c) })()
	defer hub.Subscribe(ContractorTopic("c2"), func(c Change) { other = append(other, c) })()

	hub.Publish(Change{Collection: "dailyAssignments", DocumentID: "d1_2025-01-01", Type: Created, ContractorID: "c1", DriverID: "d1"})

	assert.Len(t, admin, 1)
	assert.Len(t, contractor, 1)
	assert.Len(t, driver, 1)
	assert.Empty(t, other)
	assert.False(t, admin[0].At.IsZero())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	calls := 0
	unsubscribe := hub.Subscribe(AdminTopic, func(Change) { calls++ })
	assert.Equal(t, 1, hub.Subscribers(AdminTopic))

	hub.Publish(Change{Collection: "workers", Type: Updated})
	unsubscribe()
	unsubscribe()
	hub.Publish(Change{Collection: "workers", Type: Updated})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, hub.Subscribers(AdminTopic))
}
