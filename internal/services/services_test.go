package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	alice core.UserID = "alice"
	bob   core.UserID = "bob"
)

// fixedNow is 2024-06-15 noon UTC.
var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, evt *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store     *memory.Store
	publisher *recordingPublisher
	svc       *services.Services
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	pub := &recordingPublisher{}
	svc := services.New(services.Config{
		Store:            store,
		Publisher:        pub,
		Now:              func() time.Time { return fixedNow },
		DefaultsCacheTTL: time.Minute,
	})
	return fixture{store: store, publisher: pub, svc: svc}
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) core.Date {
	return core.NewDate(y, m, d)
}

func (f fixture) record(t *testing.T, user core.UserID, amount string, d core.Date, category string) core.Transaction {
	t.Helper()
	tx, err := f.svc.Ledger.Create(context.Background(), user, core.NewTransaction{
		Amount:   amt(amount),
		Date:     d,
		Category: category,
	})
	require.NoError(t, err)
	return tx
}
