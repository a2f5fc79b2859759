package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amzmarine/crm/internal/config"
)

// fakeWriter records messages written.
type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaProducerWithWriter(fw)

	err := p.Publish(context.Background(), "shipment.status", map[string]string{"id": "demo-1"})
	require.NoError(t, err)
	require.Len(t, fw.msgs, 1)

	assert.Equal(t, "shipment.status", string(fw.msgs[0].Key))
	var body map[string]string
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &body))
	assert.Equal(t, "demo-1", body["id"])

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestPublish_WriteError(t *testing.T) {
	p := NewKafkaProducerWithWriter(&fakeWriter{err: errors.New("broker down")})
	err := p.Publish(context.Background(), "k", "v")
	assert.ErrorContains(t, err, "broker down")
}

func TestPublish_UnmarshalableValue(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaProducerWithWriter(fw)
	assert.Error(t, p.Publish(context.Background(), "k", make(chan int)))
	assert.Empty(t, fw.msgs)
}

func TestNewFromConfig(t *testing.T) {
	assert.IsType(t, Noop{}, NewFromConfig(config.EventsConfig{}))

	p := NewFromConfig(config.EventsConfig{KafkaBroker: "localhost:9092", KafkaTopic: "crm.activity"})
	producer, ok := p.(*KafkaProducer)
	require.True(t, ok)
	assert.Equal(t, "crm.activity", producer.topic)
}
