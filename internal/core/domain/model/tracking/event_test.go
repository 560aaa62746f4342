package tracking_test

import (
	"encoding/json"
	"testing"

	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/domain/model/tracking"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_WirePayload(t *testing.T) {
	tests := []struct {
		name  string
		event tracking.Event
	}{
		{name: "status_update_preparing", event: tracking.NewStatusUpdate(order.Preparing)},
		{name: "status_update_delivered", event: tracking.NewStatusUpdate(order.Delivered)},
		{name: "status_update_custom_message", event: tracking.StatusUpdate{Status: order.InTransit, Message: "Courier: Luis"}},
		{name: "location_update", event: tracking.LocationUpdate{Lat: 6.2125, Lng: -75.5698, Progress: 10, ETAMinutes: 1}},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			require.NoError(t, err)

			g.Assert(t, tt.name, data)
		})
	}
}

func TestEvent_Type(t *testing.T) {
	assert.Equal(t, tracking.TypeStatusUpdate, tracking.NewStatusUpdate(order.Pending).Type())
	assert.Equal(t, tracking.TypeLocationUpdate, tracking.LocationUpdate{}.Type())
}

func TestEvent_PayloadCarriesNoOrderID(t *testing.T) {
	for _, e := range []tracking.Event{tracking.NewStatusUpdate(order.Pending), tracking.LocationUpdate{ETAMinutes: 1}} {
		data, err := json.Marshal(e)
		require.NoError(t, err)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(data, &fields))
		assert.NotContains(t, fields, "order_id")
		assert.Equal(t, e.Type(), fields["type"])
	}
}
