package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyIDRoundTrip(t *testing.T) {
	now := time.UnixMilli(1741597200123)
	id := LegacyID("daily_assignment", now)

	prefix, at, ok := ParseLegacyID(id)
	require.True(t, ok, id)
	assert.Equal(t, "daily_assignment", prefix)
	assert.True(t, at.Equal(now))
	assert.Len(t, id[strings.LastIndex(id, "_")+1:], 9)
}

func TestParseLegacyIDRejectsOtherIDs(t *testing.T) {
	for _, id := range []string{NewID(), "driver-1_2025-03-10", "abc", "_123_abc", "x_notanumber_abc"} {
		_, _, ok := ParseLegacyID(id)
		assert.False(t, ok, id)
	}
}

func TestNewDocumentKnowsEveryCollection(t *testing.T) {
	for collection := range registry {
		doc, err := NewDocument(collection)
		require.NoError(t, err)
		doc.SetID("x")
		assert.Equal(t, "x", doc.GetID())
	}
	_, err := NewDocument("stages")
	assert.Error(t, err)
	assert.Len(t, All(), len(registry))
}

func TestWorkerDataReadsLegacyFullName(t *testing.T) {
	var w Worker
	require.NoError(t, json.Unmarshal([]byte(`{"id":"w1","fullName":"Kamla Devi","phone":"9876543210","isActive":true}`), &w))
	w.Normalize()
	assert.Equal(t, "Kamla Devi", w.Name)
	assert.Empty(t, w.LegacyFullName)

	both := WorkerData{Name: "Kamla", LegacyFullName: "Kamla Devi"}
	both.Normalize()
	assert.Equal(t, "Kamla", both.Name)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Vehicle_Owner ")
	require.True(t, ok)
	assert.True(t, role.IsContractor())
	assert.False(t, role.IsAdmin())
	assert.NotEmpty(t, role.Description())

	_, ok = ParseRole("mayor")
	assert.False(t, ok)
	assert.True(t, RoleAllAdmin.IsAdmin())
}

func TestCoordinates(t *testing.T) {
	lucknow := Coordinates{Lat: 26.8467, Lng: 80.9462}
	kanpur := Coordinates{Lat: 26.4499, Lng: 80.3319}
	assert.InDelta(t, 77, lucknow.DistanceKm(kanpur), 3)
	assert.Zero(t, lucknow.DistanceKm(lucknow))

	fp := FeederPoint{Base: Base{ID: "fp-1"}, FeederPointName: "Hazratganj", Coordinates: lucknow}
	b, err := json.Marshal(fp.GeoJSON())
	require.NoError(t, err)
	geo := string(b)
	assert.Contains(t, geo, `"type":"Feature"`)
	assert.Contains(t, geo, `"id":"fp-1"`)
	assert.Contains(t, geo, `"type":"Point"`)
	assert.Contains(t, geo, "80.9462")
	assert.Contains(t, geo, "Hazratganj")
}
