package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu         sync.Mutex
	exchanges  []string
	queues     []string
	queueArgs  []amqp.Table
	bindings   []string
	published  []amqp.Publishing
	confirms   chan amqp.Confirmation
	deliveries chan amqp.Delivery
	nack       bool
	hold       bool
	held       []amqp.Confirmation
	publishErr error
	closed     bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{deliveries: make(chan amqp.Delivery, 8)}
}

func (f *fakeChannel) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanges = append(f.exchanges, name)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues = append(f.queues, name)
	f.queueArgs = append(f.queueArgs, args)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindings = append(f.bindings, exchange+"/"+key+"->"+name)
	return nil
}

func (f *fakeChannel) Qos(int, int, bool) error { return nil }

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Confirm(bool) error { return nil }

func (f *fakeChannel) NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation {
	f.confirms = confirm
	return confirm
}

func (f *fakeChannel) GetNextPublishSeqNo() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.published)) + 1
}

// releaseHeld delivers confirms that were withheld while hold was set.
func (f *fakeChannel) releaseHeld() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.held {
		f.confirms <- c
	}
	f.held = nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, msg)
	tag := uint64(len(f.published))
	confirmation := amqp.Confirmation{DeliveryTag: tag, Ack: !f.nack}
	switch {
	case f.hold:
		f.held = append(f.held, confirmation)
	case f.confirms != nil:
		f.confirms <- confirmation
	}
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type ackRecord struct {
	acked   bool
	requeue bool
}

type fakeAcknowledger struct {
	mu      sync.Mutex
	records map[uint64]ackRecord
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records[tag] = ackRecord{acked: true}
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records[tag] = ackRecord{requeue: requeue}
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *fakeAcknowledger) get(tag uint64) (ackRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.records[tag]
	return r, ok
}

func TestRabbitMQPublishWaitsForConfirm(t *testing.T) {
	pub := newFakeChannel()
	r, err := NewRabbitMQ(pub, newFakeChannel(), RabbitMQConfig{Exchange: "cardsync.test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cardsync.test"}, pub.exchanges)

	event := Envelope{EventID: "evt-1", EventType: "flashcard.changed", Fingerprint: "v1:abc", PartitionKey: "7"}
	require.NoError(t, r.Publish(context.Background(), "flashcard", event))

	require.Len(t, pub.published, 1)
	msg := pub.published[0]
	assert.Equal(t, "evt-1", msg.MessageId)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "v1:abc", msg.Headers["fingerprint"])

	var decoded Envelope
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "7", decoded.PartitionKey)
}

func TestRabbitMQPublishNacked(t *testing.T) {
	pub := newFakeChannel()
	pub.nack = true
	r, err := NewRabbitMQ(pub, newFakeChannel(), RabbitMQConfig{}, nil)
	require.NoError(t, err)

	err = r.Publish(context.Background(), "flashcard", Envelope{EventID: "evt-1"})
	assert.ErrorIs(t, err, ErrPublishNacked)
}

func TestRabbitMQLateConfirmDoesNotAnswerNextPublish(t *testing.T) {
	pub := newFakeChannel()
	r, err := NewRabbitMQ(pub, newFakeChannel(), RabbitMQConfig{}, nil)
	require.NoError(t, err)

	pub.hold = true
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = r.Publish(ctx, "flashcard", Envelope{EventID: "evt-1"})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the ack for evt-1 arrives while evt-2 is in flight; evt-2 is nacked
	pub.mu.Lock()
	pub.hold = false
	pub.nack = true
	pub.mu.Unlock()
	pub.releaseHeld()

	err = r.Publish(context.Background(), "flashcard", Envelope{EventID: "evt-2"})
	assert.ErrorIs(t, err, ErrPublishNacked)
}

func TestRabbitMQPublishError(t *testing.T) {
	pub := newFakeChannel()
	pub.publishErr = errors.New("channel closed")
	r, err := NewRabbitMQ(pub, newFakeChannel(), RabbitMQConfig{}, nil)
	require.NoError(t, err)

	err = r.Publish(context.Background(), "flashcard", Envelope{EventID: "evt-1"})
	assert.Error(t, err)
}

func TestRabbitMQSubscribeAcksAndNacks(t *testing.T) {
	consume := newFakeChannel()
	permanent := errors.New("permanent")
	r, err := NewRabbitMQ(newFakeChannel(), consume, RabbitMQConfig{
		Exchange: "cardsync.test",
		Requeue:  func(err error) bool { return !errors.Is(err, permanent) },
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, r.Subscribe(ctx, "flashcard", "flashcard-service.i1", func(_ context.Context, event Envelope) error {
		switch event.EventID {
		case "transient":
			return errors.New("db down")
		case "poison":
			return permanent
		default:
			return nil
		}
	}))
	assert.Equal(t, []string{"flashcard-service.i1.flashcard"}, consume.queues)
	assert.Equal(t, []string{"cardsync.test/flashcard->flashcard-service.i1.flashcard"}, consume.bindings)

	acks := &fakeAcknowledger{records: map[uint64]ackRecord{}}
	send := func(tag uint64, body []byte) {
		consume.deliveries <- amqp.Delivery{Acknowledger: acks, DeliveryTag: tag, Body: body}
	}
	encode := func(id string) []byte {
		b, err := json.Marshal(Envelope{EventID: id})
		require.NoError(t, err)
		return b
	}

	send(1, encode("ok"))
	send(2, encode("transient"))
	send(3, encode("poison"))
	send(4, []byte("{not json"))

	require.Eventually(t, func() bool {
		_, ok := acks.get(4)
		return ok
	}, time.Second, 5*time.Millisecond)

	ok, _ := acks.get(1)
	assert.True(t, ok.acked)
	transient, _ := acks.get(2)
	assert.False(t, transient.acked)
	assert.True(t, transient.requeue)
	poison, _ := acks.get(3)
	assert.False(t, poison.requeue)
	malformed, _ := acks.get(4)
	assert.False(t, malformed.requeue)
}

func TestRabbitMQQueueExpiry(t *testing.T) {
	consume := newFakeChannel()
	r, err := NewRabbitMQ(newFakeChannel(), consume, RabbitMQConfig{QueueExpiry: 30 * time.Minute}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Subscribe(ctx, "flashcard", "flashcard-service.tmp", func(context.Context, Envelope) error { return nil }))

	require.Len(t, consume.queueArgs, 1)
	assert.Equal(t, amqp.Table{"x-expires": int64(1800000)}, consume.queueArgs[0])
}

func TestRabbitMQQueueWithoutExpiry(t *testing.T) {
	consume := newFakeChannel()
	r, err := NewRabbitMQ(newFakeChannel(), consume, RabbitMQConfig{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Subscribe(ctx, "flashcard", "flashcard-service.i1", func(context.Context, Envelope) error { return nil }))

	require.Len(t, consume.queueArgs, 1)
	assert.Nil(t, consume.queueArgs[0])
}

func TestNewRabbitMQRequiresChannels(t *testing.T) {
	_, err := NewRabbitMQ(nil, newFakeChannel(), RabbitMQConfig{}, nil)
	assert.ErrorIs(t, err, ErrChannelRequired)
}

func TestRabbitMQClose(t *testing.T) {
	pub, sub := newFakeChannel(), newFakeChannel()
	r, err := NewRabbitMQ(pub, sub, RabbitMQConfig{}, nil)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.True(t, pub.closed)
	assert.True(t, sub.closed)
}
