package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
	cartdomain "github.com/Apurer/freshcart-api/internal/domains/cart/domain"
	checkoutdomain "github.com/Apurer/freshcart-api/internal/domains/checkout/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

type flakyRepo struct {
	*memory.Repository
	createErr   error
	linesErr    error
	createCalls atomic.Int32
	deleteCalls atomic.Int32
}

func (r *flakyRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	r.createCalls.Add(1)
	if r.createErr != nil {
		return r.createErr
	}
	return r.Repository.CreateOrder(ctx, order)
}

func (r *flakyRepo) CreateLines(ctx context.Context, orderID string, lines []domain.Line) error {
	if r.linesErr != nil {
		return r.linesErr
	}
	return r.Repository.CreateLines(ctx, orderID, lines)
}

func (r *flakyRepo) Delete(ctx context.Context, id string) error {
	r.deleteCalls.Add(1)
	return r.Repository.Delete(ctx, id)
}

// flakyTx routes transactional writes through the flaky repo's failure switches.
type flakyTx struct{ repo *flakyRepo }

func (t flakyTx) WithinTx(ctx context.Context, fn func(context.Context, ports.Repository) error) error {
	return t.repo.Repository.WithinTx(ctx, func(ctx context.Context, staged ports.Repository) error {
		return fn(ctx, &stagedFlaky{Repository: staged, parent: t.repo})
	})
}

type stagedFlaky struct {
	ports.Repository
	parent *flakyRepo
}

func (s *stagedFlaky) CreateOrder(ctx context.Context, order *domain.Order) error {
	s.parent.createCalls.Add(1)
	if s.parent.createErr != nil {
		return s.parent.createErr
	}
	return s.Repository.CreateOrder(ctx, order)
}

func (s *stagedFlaky) CreateLines(ctx context.Context, orderID string, lines []domain.Line) error {
	if s.parent.linesErr != nil {
		return s.parent.linesErr
	}
	return s.Repository.CreateLines(ctx, orderID, lines)
}

type profileWriter struct {
	err   error
	calls []ports.ShippingProfile
}

func (p *profileWriter) SyncShippingProfile(_ context.Context, _ string, profile ports.ShippingProfile) error {
	p.calls = append(p.calls, profile)
	return p.err
}

type fakeCart struct {
	mu      sync.Mutex
	lines   []cartdomain.Line
	cleared int
}

func (c *fakeCart) Lines() []cartdomain.Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]cartdomain.Line(nil), c.lines...)
}

func (c *fakeCart) ClearCart(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.cleared++
}

type runner struct{ *Placement }

func (r runner) Place(ctx context.Context, cmd ports.PlacementCommand) (*domain.Order, error) {
	return r.Run(ctx, cmd)
}

type blockingOrchestrator struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (b *blockingOrchestrator) Place(_ context.Context, cmd ports.PlacementCommand) (*domain.Order, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return cmd.Order, nil
}

func line(id, name, price string, qty int) cartdomain.Line {
	return cartdomain.Line{
		Product:  catalogdomain.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Stock: 10},
		Quantity: qty,
	}
}

func sampleCart() *fakeCart {
	return &fakeCart{lines: []cartdomain.Line{line("1", "Milk", "3.99", 2), line("2", "Bread", "5.00", 1)}}
}

func sampleDraft(method checkoutdomain.PaymentMethod) checkoutdomain.Draft {
	return checkoutdomain.Draft{
		Shipping: checkoutdomain.ShippingDetails{
			FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "555-0100",
			Street: "12 Analytical Way", City: "London", State: "LDN", ZipCode: "N1",
		},
		Payment: checkoutdomain.PaymentSelection{Method: method},
	}
}

var ada = &ports.User{ID: "u1", Name: "Ada Lovelace", Email: "ada@example.com"}

type harness struct {
	repo     *flakyRepo
	profiles *profileWriter
	pipeline *Pipeline
	idem     *memory.IdempotencyStore
}

func newHarness(atomicWrites, transactional bool) *harness {
	h := &harness{
		repo:     &flakyRepo{Repository: memory.NewRepository()},
		profiles: &profileWriter{},
		idem:     memory.NewIdempotencyStore(),
	}
	opts := []PlacementOption{WithProfileWriter(h.profiles)}
	if transactional {
		opts = append(opts, WithTransactor(flakyTx{repo: h.repo}))
	}
	placement := NewPlacement(h.repo, opts...)
	var seq atomic.Int64
	h.pipeline = NewPipeline(runner{placement}, h.repo,
		WithIdempotencyStore(h.idem),
		WithAtomicWrites(atomicWrites),
		WithPipelineClock(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string { return fmt.Sprintf("id-%04d", seq.Add(1)) }),
	)
	return h
}

func TestSubmit_UnauthenticatedNeverCreatesOrder(t *testing.T) {
	h := newHarness(true, false)
	cart := sampleCart()

	_, err := h.pipeline.Submit(context.Background(), ports.SubmitInput{Draft: sampleDraft(checkoutdomain.PaymentCash), Cart: cart})
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.Zero(t, h.repo.createCalls.Load())
	require.Empty(t, h.profiles.calls)
	require.Equal(t, 0, cart.cleared)
}

func TestSubmit_EmptyCart(t *testing.T) {
	h := newHarness(true, false)
	_, err := h.pipeline.Submit(context.Background(), ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentCash), Cart: &fakeCart{}})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmit_InvalidDraft(t *testing.T) {
	h := newHarness(true, false)
	draft := sampleDraft(checkoutdomain.PaymentPhonePe)
	_, err := h.pipeline.Submit(context.Background(), ports.SubmitInput{User: ada, Draft: draft, Cart: sampleCart()})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Zero(t, h.repo.createCalls.Load())
}

func TestSubmit_PlacesOrderWithFrozenTotals(t *testing.T) {
	h := newHarness(true, false)
	cart := sampleCart()

	result, err := h.pipeline.Submit(context.Background(), ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentCard), Cart: cart})
	require.NoError(t, err)
	require.False(t, result.Replayed)

	order := result.Order
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("12.98")))
	assert.True(t, order.Shipping.Equal(decimal.RequireFromString("4.99")))
	assert.True(t, order.Tax.Equal(decimal.RequireFromString("0.91")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("18.88")))
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, "12 Analytical Way, London, LDN N1", order.ShippingAddress)
	assert.Equal(t, "card", order.PaymentMethod)

	stored, err := h.repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	require.Equal(t, "Milk", stored.Lines[0].ProductName)
	require.Equal(t, 1, cart.cleared)

	require.Len(t, h.profiles.calls, 1)
	require.Equal(t, "Ada Lovelace", h.profiles.calls[0].FullName)
}

func TestSubmit_CashOnDeliveryStatus(t *testing.T) {
	h := newHarness(true, false)
	result, err := h.pipeline.Submit(context.Background(), ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentCash), Cart: sampleCart()})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPendingCOD, result.Order.Status)
}

func TestSubmit_ProfileSyncFailureIsInvisible(t *testing.T) {
	h := newHarness(true, false)
	h.profiles.err = errors.New("profiles table unavailable")
	cart := sampleCart()

	result, err := h.pipeline.Submit(context.Background(), ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentCash), Cart: cart})
	require.NoError(t, err)
	require.NotEmpty(t, result.Order.ID)
	require.Equal(t, 1, cart.cleared)
}

func TestSubmit_OrderCreateFailureKeepsCart(t *testing.T) {
	h := newHarness(true, false)
	h.repo.createErr = errors.New("insert failed")
	cart := sampleCart()

	_, err := h.pipeline.Submit(context.Background(), ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentCash), Cart: cart})
	require.ErrorIs(t, err, ErrOrderCreateFailed)
	require.Equal(t, StepOrderCreate, FailedStep(err))
	require.Equal(t, 0, cart.cleared)
	require.Len(t, cart.Lines(), 2)
}

func TestSubmit_LinesFailureKeepsCartAndNamesStep(t *testing.T) {
	for _, tc := range []struct {
		name          string
		atomic        bool
		transactional bool
		orphan        bool
	}{
		{name: "transaction", atomic: true, transactional: true},
		{name: "compensating delete", atomic: true},
		{name: "legacy orphan", orphan: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(tc.atomic, tc.transactional)
			h.repo.linesErr = errors.New("order_items insert failed")
			cart := sampleCart()

			_, err := h.pipeline.Submit(context.Background(), ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentCash), Cart: cart})
			require.ErrorIs(t, err, ErrOrderLinesFailed)
			require.NotErrorIs(t, err, ErrOrderCreateFailed)
			require.Equal(t, StepOrderLines, FailedStep(err))
			require.True(t, Retryable(err))
			require.Equal(t, 0, cart.cleared)

			orders, listErr := h.repo.ListForUser(context.Background(), ada.ID)
			require.NoError(t, listErr)
			if tc.orphan {
				require.Len(t, orders, 1)
				require.Empty(t, orders[0].Lines)
			} else {
				require.Empty(t, orders)
			}
		})
	}
}

func TestSubmit_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true, false)

	cart := sampleCart()

	first, err := h.pipeline.Submit(ctx, ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentCash), Cart: cart, IdempotencyKey: "k1"})
	require.NoError(t, err)
	require.Empty(t, cart.Lines())

	// The retry carries the cart the first submit cleared.
	second, err := h.pipeline.Submit(ctx, ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentCash), Cart: cart, IdempotencyKey: "k1"})
	require.NoError(t, err)
	require.True(t, second.Replayed)
	require.Equal(t, first.Order.ID, second.Order.ID)
	require.True(t, second.Totals.Total.Equal(first.Totals.Total))
	require.Equal(t, int32(1), h.repo.createCalls.Load())
	require.Equal(t, 1, cart.cleared)

	_, err = h.pipeline.Submit(ctx, ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentPayPal), Cart: cart, IdempotencyKey: "k1"})
	require.ErrorIs(t, err, ErrIdempotencyConflict)

	_, err = h.pipeline.Submit(ctx, ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentCash), Cart: cart, IdempotencyKey: "k2"})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestReplay_LooksUpReceiptWithoutDraft(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true, false)

	missing, err := h.pipeline.Replay(ctx, ada, "k9")
	require.NoError(t, err)
	require.Nil(t, missing)

	placed, err := h.pipeline.Submit(ctx, ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentCash), Cart: sampleCart(), IdempotencyKey: "k9"})
	require.NoError(t, err)

	replayed, err := h.pipeline.Replay(ctx, ada, " k9 ")
	require.NoError(t, err)
	require.NotNil(t, replayed)
	require.True(t, replayed.Replayed)
	require.Equal(t, placed.Order.ID, replayed.Order.ID)

	other, err := h.pipeline.Replay(ctx, &ports.User{ID: "someone-else"}, "k9")
	require.NoError(t, err)
	require.Nil(t, other)

	_, err = h.pipeline.Replay(ctx, nil, "k9")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSubmit_RejectsConcurrentSubmitForSameUser(t *testing.T) {
	orchestrator := &blockingOrchestrator{started: make(chan struct{}), release: make(chan struct{})}
	pipeline := NewPipeline(orchestrator, memory.NewRepository())

	done := make(chan error, 1)
	go func() {
		_, err := pipeline.Submit(context.Background(), ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentCash), Cart: sampleCart()})
		done <- err
	}()
	<-orchestrator.started

	_, err := pipeline.Submit(context.Background(), ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentCash), Cart: sampleCart()})
	require.ErrorIs(t, err, ErrSubmissionInFlight)

	close(orchestrator.release)
	require.NoError(t, <-done)

	_, err = pipeline.Submit(context.Background(), ports.SubmitInput{User: ada, Draft: sampleDraft(checkoutdomain.PaymentCash), Cart: sampleCart()})
	require.NoError(t, err)
}

func TestFingerprintSubmit_CoversUserAndDraft(t *testing.T) {
	draft := sampleDraft(checkoutdomain.PaymentCash)
	a, err := FingerprintSubmit("u1", draft)
	require.NoError(t, err)
	b, err := FingerprintSubmit("u1", sampleDraft(checkoutdomain.PaymentCash))
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := FingerprintSubmit("u2", draft)
	require.NoError(t, err)
	require.NotEqual(t, a, c)

	d, err := FingerprintSubmit("u1", sampleDraft(checkoutdomain.PaymentPayPal))
	require.NoError(t, err)
	require.NotEqual(t, a, d)
}
