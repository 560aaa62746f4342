package notify_test

import (
	"fmt"
	"strings"
	"testing"

	"delivery-tracker/internal/adapters/out/notify"
	"delivery-tracker/internal/core/domain/model/order"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contact = order.Contact{Email: "ana@example.com", Phone: "+573001112233"}

func render(messages []notify.Message) []byte {
	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "[%s] to=%s subject=%q\n%s\n", m.Channel, m.To, m.Subject, m.Body)
	}
	return []byte(b.String())
}

func TestCompose_Messages(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	tests := []struct {
		name   string
		status order.Status
	}{
		{name: "confirmation", status: order.Pending},
		{name: "in_transit", status: order.InTransit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.Assert(t, tt.name, render(notify.Compose(contact, 42, tt.status)))
		})
	}
}

func TestCompose_SkipsMissingAddresses(t *testing.T) {
	smsOnly := notify.Compose(order.Contact{Phone: "+573001112233"}, 7, order.Delivered)
	require.Len(t, smsOnly, 1)
	assert.Equal(t, notify.ChannelSMS, smsOnly[0].Channel)
	assert.Equal(t, order.ID(7), smsOnly[0].OrderID)
	assert.Equal(t, order.Delivered, smsOnly[0].Status)

	emailOnly := notify.Compose(order.Contact{Email: " ana@example.com "}, 7, order.Cancelled)
	require.Len(t, emailOnly, 1)
	assert.Equal(t, "ana@example.com", emailOnly[0].To)
	assert.Contains(t, emailOnly[0].Body, "CANCELLED")

	assert.Empty(t, notify.Compose(order.Contact{}, 7, order.Preparing))
}
