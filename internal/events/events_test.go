package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/domain"
)

func TestDispatcher_DeliversToSubscribersAndSurvivesFailures(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var seen []string
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		seen = append(seen, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.Actor)
		return nil
	})
	d.Subscribe(EventTicketDeleted, func(context.Context, Event) error {
		seen = append(seen, "deleted")
		return nil
	})

	ev := NewEvent(EventTicketCreated, "ada@example.com", time.Now(), nil)
	require.NoError(t, d.Publish(context.Background(), ev))
	assert.Equal(t, []string{"first", "second:ada@example.com"}, seen)
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2024, 6, 1, 14, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	a := NewEvent(EventSessionStarted, "ada@example.com", at, nil)
	b := NewEvent(EventSessionStarted, "ada@example.com", at, nil)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, time.UTC, a.Timestamp.Location())
	assert.True(t, a.Timestamp.Equal(at))
}

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	ret := m.Called(name, durable, autoDelete, exclusive, noWait, args)
	return amqp.Queue{Name: name}, ret.Error(0)
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &mockChannel{}
	ch.On("QueueDeclare", "ticketapp.events", true, false, false, false, amqp.Table(nil)).Return(nil)

	var published amqp.Publishing
	ch.On("PublishWithContext", "", "ticketapp.events", false, false, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(4).(amqp.Publishing) }).
		Return(nil)
	ch.On("Close").Return(nil)

	p, err := NewAMQPPublisher(ch, "ticketapp.events")
	require.NoError(t, err)

	ev := NewEvent(EventTicketCreated, "ada@example.com", time.Now(), TicketPayload{
		Ticket: domain.Ticket{ID: 7, Title: "Printer", Status: domain.TicketStatusOpen},
	})
	require.NoError(t, p.Publish(context.Background(), ev))
	require.NoError(t, p.Close())

	assert.Equal(t, "application/json", published.ContentType)
	assert.Equal(t, amqp.Persistent, published.DeliveryMode)
	assert.Equal(t, ev.ID, published.MessageId)
	assert.Equal(t, "ticket_created", published.Type)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(published.Body, &decoded))
	assert.Equal(t, "ada@example.com", decoded["actor"])
	ch.AssertExpectations(t)
}

func TestAMQPPublisher_DeclareFailure(t *testing.T) {
	ch := &mockChannel{}
	ch.On("QueueDeclare", "q", true, false, false, false, amqp.Table(nil)).Return(errors.New("denied"))

	_, err := NewAMQPPublisher(ch, "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}
