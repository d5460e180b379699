package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/godilite/ticket-qc/internal/export"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
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

func TestPublishScores(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, zaptest.NewLogger(t))

	records := []export.Record{
		{RunID: "run-1", Number: "INC2", Total: 30},
		{RunID: "run-1", Number: "INC1", Total: 40},
	}
	require.NoError(t, p.PublishScores(context.Background(), "run-1", records))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "INC2", string(w.msgs[0].Key), "input order is kept")
	assert.Equal(t, "INC1", string(w.msgs[1].Key))
	require.Len(t, w.msgs[0].Headers, 1)
	assert.Equal(t, HeaderRunID, w.msgs[0].Headers[0].Key)
	assert.Equal(t, "run-1", string(w.msgs[0].Headers[0].Value))

	var decoded export.Record
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &decoded))
	assert.Equal(t, "INC1", decoded.Number)
	assert.Equal(t, 40, decoded.Total)
}

func TestPublishScores_Empty(t *testing.T) {
	w := &fakeWriter{err: errors.New("must not be called")}
	p := newProducer(w, nil)

	assert.NoError(t, p.PublishScores(context.Background(), "run-1", nil))
}

func TestPublishScores_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := newProducer(w, zaptest.NewLogger(t))

	err := p.PublishScores(context.Background(), "run-9", []export.Record{{Number: "INC1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run-9")
	assert.Contains(t, err.Error(), "broker unavailable")
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newProducer(w, nil).Close())
	assert.True(t, w.closed)
}

func TestNewProducer(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "qc-scores", nil)

	kw, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "qc-scores", kw.Topic)
	assert.IsType(t, &kafka.Hash{}, kw.Balancer)
}
