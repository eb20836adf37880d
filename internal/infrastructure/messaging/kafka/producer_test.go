package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter records messages written.
type fakeWriter struct {
	msgs   []skafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...skafka.Message) error {
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
	p := NewProducerWithWriter(fw, zerolog.Nop())

	err := p.Publish(context.Background(), "order-1", map[string]string{"type": "order.placed"})
	require.NoError(t, err)
	require.Len(t, fw.msgs, 1)

	assert.Equal(t, []byte("order-1"), fw.msgs[0].Key)
	var got map[string]string
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &got))
	assert.Equal(t, "order.placed", got["type"])
}

func TestPublish_WriteError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	p := NewProducerWithWriter(fw, zerolog.Nop())

	err := p.Publish(context.Background(), "k", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestPublish_UnencodableValue(t *testing.T) {
	fw := &fakeWriter{}
	p := NewProducerWithWriter(fw, zerolog.Nop())

	err := p.Publish(context.Background(), "k", make(chan int))
	require.Error(t, err)
	assert.Empty(t, fw.msgs)
}

func TestClose(t *testing.T) {
	fw := &fakeWriter{}
	require.NoError(t, NewProducerWithWriter(fw, zerolog.Nop()).Close())
	assert.True(t, fw.closed)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	require.NoError(t, p.Publish(context.Background(), "order-1", map[string]string{"type": "order.deleted"}))
	assert.Contains(t, buf.String(), "order.deleted")
	assert.NoError(t, p.Close())
}
