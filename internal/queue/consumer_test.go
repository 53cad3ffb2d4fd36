package queue

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(b []byte) (string, error) { return string(b), nil }

func TestMergeDeliveriesForwardsAll(t *testing.T) {
	a := make(chan amqp.Delivery, 2)
	b := make(chan amqp.Delivery, 2)
	a <- amqp.Delivery{Body: []byte("a1")}
	a <- amqp.Delivery{Body: []byte("a2")}
	b <- amqp.Delivery{Body: []byte("b1")}
	close(a)
	close(b)

	merged := mergeDeliveries([]deliverySource{
		{msgs: a, render: identity},
		{msgs: b, render: identity},
	})

	got := map[string]bool{}
	for m := range merged {
		got[string(m.d.Body)] = true
	}
	assert.Equal(t, map[string]bool{"a1": true, "a2": true, "b1": true}, got)
}

// Once every source stream closes (the broker dropped the connection),
// the merged channel must close too so the consume loop can return and
// reconnect instead of blocking forever.
func TestMergeDeliveriesClosesWhenSourcesClose(t *testing.T) {
	a := make(chan amqp.Delivery)
	b := make(chan amqp.Delivery)
	merged := mergeDeliveries([]deliverySource{
		{msgs: a, render: identity},
		{msgs: b, render: identity},
	})

	close(a)
	select {
	case <-merged:
		t.Fatal("merged closed while one source was still open")
	case <-time.After(20 * time.Millisecond):
	}

	close(b)
	select {
	case _, ok := <-merged:
		assert.False(t, ok, "expected closed channel, got a delivery")
	case <-time.After(time.Second):
		t.Fatal("merged channel did not close after all sources closed")
	}
}

func TestRenderModerated(t *testing.T) {
	ev := ContentModeratedEvent{
		ContentType: "post", ContentID: 7, Action: "approve",
		NewStatus: "approved", ModeratorID: 2, AuthorID: 5,
		DecidedAt: "2026-08-28T10:00:00Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	line, err := renderModerated(body)
	require.NoError(t, err)
	assert.Contains(t, line, "post=7")
	assert.Contains(t, line, "action=approve")

	_, err = renderModerated([]byte("{"))
	assert.Error(t, err)
}

func TestRenderPurchase(t *testing.T) {
	ev := PurchaseCompletedEvent{
		PurchaseID: 3, UserID: 9, PlayerID: 1,
		PlayerName: "Bukayo Saka", PriceCents: 9999,
		CompletedAt: "2026-08-28T10:00:00Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	line, err := renderPurchase(body)
	require.NoError(t, err)
	assert.Contains(t, line, "id=3")
	assert.Contains(t, line, `player="Bukayo Saka"`)
}
