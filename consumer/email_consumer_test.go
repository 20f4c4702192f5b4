package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	aws_pkg "github.com/yashrajoria/lezzetli-admin/pkg/aws"
	"github.com/yashrajoria/lezzetli-admin/sender"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeQueue struct {
	mu       sync.Mutex
	pending  []aws_pkg.Message
	deleted  []string
	received chan struct{}
}

func (q *fakeQueue) ReceiveMessages(ctx context.Context, _ int32) ([]aws_pkg.Message, error) {
	q.mu.Lock()
	msgs := q.pending
	q.pending = nil
	q.mu.Unlock()
	if len(msgs) > 0 {
		return msgs, nil
	}
	select {
	case q.received <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (q *fakeQueue) DeleteMessage(_ context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deleted = append(q.deleted, receiptHandle)
	return nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (s *fakeSender) SendEmail(_ context.Context, to, _, _ string) (sender.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return sender.SendResult{}, errors.New("smtp down")
	}
	s.sent = append(s.sent, to)
	return sender.SendResult{MessageID: "m-" + to}, nil
}

func jobBody(t *testing.T, to string) string {
	raw, err := json.Marshal(sender.EmailJob{ID: "j1", To: to, Subject: sender.WelcomeSubject, Body: "<p>hi</p>"})
	require.NoError(t, err)
	return string(raw)
}

func TestProcessMessage(t *testing.T) {
	q := &fakeQueue{}
	s := &fakeSender{}
	c := NewEmailConsumer(q, s, zap.NewNop())
	ctx := context.Background()

	c.processMessage(ctx, aws_pkg.Message{Body: jobBody(t, "a@test"), ReceiptHandle: "r1"})

	envelope, err := json.Marshal(map[string]string{"Message": jobBody(t, "b@test")})
	require.NoError(t, err)
	c.processMessage(ctx, aws_pkg.Message{Body: string(envelope), ReceiptHandle: "r2"})

	c.processMessage(ctx, aws_pkg.Message{Body: "{not json", ReceiptHandle: "r3"})
	c.processMessage(ctx, aws_pkg.Message{Body: `{"id":"j4","subject":"x"}`, ReceiptHandle: "r4"})

	assert.Equal(t, []string{"a@test", "b@test"}, s.sent)
	assert.Equal(t, []string{"r1", "r2", "r3", "r4"}, q.deleted)
}

func TestFailedSendStaysQueued(t *testing.T) {
	q := &fakeQueue{}
	c := NewEmailConsumer(q, &fakeSender{fail: true}, zap.NewNop())

	c.processMessage(context.Background(), aws_pkg.Message{Body: jobBody(t, "a@test"), ReceiptHandle: "r1"})
	assert.Empty(t, q.deleted)
}

func TestJobBodyIsNeverLogged(t *testing.T) {
	welcome, err := sender.RenderWelcome(sender.WelcomeEmail{To: "a@test", CompanyName: "Acme", Password: "initial-secret"})
	require.NoError(t, err)
	job := func(id, to string) string {
		raw, err := json.Marshal(sender.EmailJob{ID: id, To: to, Subject: sender.WelcomeSubject, Body: welcome})
		require.NoError(t, err)
		return string(raw)
	}

	tests := []struct {
		name string
		body string
		fail bool
	}{
		{"sent", job("j1", "a@test"), false},
		{"send fails", job("j2", "a@test"), true},
		{"no recipient", job("j3", ""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			c := NewEmailConsumer(&fakeQueue{}, &fakeSender{fail: tt.fail}, zap.New(core))

			c.processMessage(context.Background(), aws_pkg.Message{Body: tt.body, ReceiptHandle: "r"})

			require.NotZero(t, logs.Len())
			for _, entry := range logs.All() {
				assert.NotContains(t, entry.Message, "initial-secret")
				for k, v := range entry.ContextMap() {
					assert.NotContains(t, fmt.Sprint(v), "initial-secret", k)
				}
			}
		})
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := &fakeQueue{
		pending:  []aws_pkg.Message{{Body: jobBody(t, "a@test"), ReceiptHandle: "r1"}},
		received: make(chan struct{}, 1),
	}
	s := &fakeSender{}
	c := NewEmailConsumer(q, s, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	select {
	case <-q.received:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer never polled again")
	}
	cancel()
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Equal(t, []string{"a@test"}, s.sent)
}
