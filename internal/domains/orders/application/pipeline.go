package application

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartdomain "github.com/Apurer/freshcart-api/internal/domains/cart/domain"
	checkoutdomain "github.com/Apurer/freshcart-api/internal/domains/checkout/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
	pricingdomain "github.com/Apurer/freshcart-api/internal/domains/pricing/domain"
)

// PipelineOption configures the Pipeline.
type PipelineOption func(*Pipeline)

// WithIdempotencyStore enables replay of submits that carry an idempotency key.
func WithIdempotencyStore(store ports.IdempotencyStore) PipelineOption {
	return func(p *Pipeline) {
		p.idempotency = store
	}
}

// WithAtomicWrites controls whether a lines failure may leave an order header behind.
func WithAtomicWrites(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.atomic = enabled
	}
}

func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithPipelineClock(clock func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithIDGenerator overrides order and line id generation.
func WithIDGenerator(newID func() string) PipelineOption {
	return func(p *Pipeline) {
		if newID != nil {
			p.newID = newID
		}
	}
}

// Pipeline turns a checkout draft and cart into a persisted order.
type Pipeline struct {
	orchestrator ports.PlacementOrchestrator
	repo         ports.Repository
	idempotency  ports.IdempotencyStore
	atomic       bool
	logger       *slog.Logger
	clock        func() time.Time
	newID        func() string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewPipeline wires the pipeline. repo is used to load replayed orders.
func NewPipeline(orchestrator ports.PlacementOrchestrator, repo ports.Repository, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		orchestrator: orchestrator,
		repo:         repo,
		atomic:       true,
		logger:       slog.New(slog.DiscardHandler),
		clock:        time.Now,
		newID:        func() string { return uuid.NewString() },
		inFlight:     map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Submit places the order. The cart is cleared only once header and lines
// are both written. A failure leaves the cart untouched for a retry.
func (p *Pipeline) Submit(ctx context.Context, in ports.SubmitInput) (*ports.SubmitResult, error) {
	if in.User == nil || strings.TrimSpace(in.User.ID) == "" {
		return nil, ErrUnauthenticated
	}
	userID := in.User.ID
	if !p.acquire(userID) {
		return nil, ErrSubmissionInFlight
	}
	defer p.release(userID)

	// A recorded receipt wins over the cart state: the first success
	// cleared the cart the retry now carries.
	key := strings.TrimSpace(in.IdempotencyKey)
	var fingerprint string
	if key != "" && p.idempotency != nil {
		var err error
		fingerprint, err = FingerprintSubmit(userID, in.Draft)
		if err != nil {
			return nil, err
		}
		replayed, err := p.replay(ctx, userID, key, fingerprint)
		if err != nil || replayed != nil {
			return replayed, err
		}
	}

	if in.Cart == nil {
		return nil, ErrEmptyCart
	}
	lines := in.Cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateDraft(in.Draft); err != nil {
		return nil, mapError(err)
	}

	totals := pricingdomain.Compute(subtotal(lines))
	order := p.buildOrder(userID, in.Draft, lines, totals)
	if err := order.Validate(); err != nil {
		return nil, mapError(err)
	}

	placed, err := p.orchestrator.Place(ctx, ports.PlacementCommand{
		Order:          order,
		Profile:        profileFromDraft(in.Draft),
		IdempotencyKey: key,
		AtomicWrites:   p.atomic,
	})
	if err != nil {
		p.logger.LogAttrs(ctx, slog.LevelError, "order placement failed",
			slog.String("user.id", userID),
			slog.String("order.id", order.ID),
			slog.String("step", FailedStep(err)),
			slog.String("error", err.Error()))
		return nil, err
	}

	if fingerprint != "" {
		p.remember(ctx, ports.SubmitReceipt{UserID: userID, Key: key, Fingerprint: fingerprint, OrderID: placed.ID})
	}
	in.Cart.ClearCart(ctx)
	p.logger.LogAttrs(ctx, slog.LevelInfo, "order placed",
		slog.String("user.id", userID),
		slog.String("order.id", placed.ID),
		slog.String("order.total", placed.Total.StringFixed(2)))
	return &ports.SubmitResult{Order: placed, Totals: totals}, nil
}

// Replay returns the order an earlier submit recorded under key, or nil when
// the key has no receipt. Callers that no longer hold the draft use this.
func (p *Pipeline) Replay(ctx context.Context, user *ports.User, key string) (*ports.SubmitResult, error) {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return nil, ErrUnauthenticated
	}
	key = strings.TrimSpace(key)
	if key == "" || p.idempotency == nil {
		return nil, nil
	}
	return p.replay(ctx, user.ID, key, "")
}

// replay loads the receipt for key. An empty fingerprint skips the payload
// comparison.
func (p *Pipeline) replay(ctx context.Context, userID, key, fingerprint string) (*ports.SubmitResult, error) {
	receipt, err := p.idempotency.Lookup(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, nil
	}
	if fingerprint != "" && receipt.Fingerprint != fingerprint {
		return nil, ErrIdempotencyConflict
	}
	return p.loadReceipt(ctx, receipt)
}

func (p *Pipeline) loadReceipt(ctx context.Context, receipt *ports.SubmitReceipt) (*ports.SubmitResult, error) {
	order, err := p.repo.GetByID(ctx, receipt.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	return &ports.SubmitResult{
		Order: order,
		Totals: pricingdomain.Totals{
			Subtotal: order.Subtotal,
			Shipping: order.Shipping,
			Tax:      order.Tax,
			Total:    order.Total,
		},
		Replayed: true,
	}, nil
}

func (p *Pipeline) remember(ctx context.Context, receipt ports.SubmitReceipt) {
	receipt.PlacedAt = p.clock().UTC()
	if _, err := p.idempotency.Record(ctx, receipt); err != nil {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "failed to store submit receipt",
			slog.String("order.id", receipt.OrderID), slog.String("error", err.Error()))
	}
}

func (p *Pipeline) acquire(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[userID]; busy {
		return false
	}
	p.inFlight[userID] = struct{}{}
	return true
}

func (p *Pipeline) release(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, userID)
}

func (p *Pipeline) buildOrder(userID string, draft checkoutdomain.Draft, lines []cartdomain.Line, totals pricingdomain.Totals) *domain.Order {
	now := p.clock().UTC()
	order := &domain.Order{
		ID:              p.newID(),
		UserID:          userID,
		Subtotal:        totals.Subtotal,
		Shipping:        totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Status:          domain.InitialStatus(draft.Payment.Method.IsCashOnDelivery()),
		ShippingAddress: draft.Shipping.FormattedAddress(),
		PaymentMethod:   string(draft.Payment.Method),
		CreatedAt:       now,
		UpdatedAt:       now,
		Lines:           make([]domain.Line, 0, len(lines)),
	}
	for _, line := range lines {
		order.Lines = append(order.Lines, domain.Line{
			ID:           p.newID(),
			OrderID:      order.ID,
			ProductID:    line.Product.ID,
			ProductName:  line.Product.Name,
			ProductImage: line.Product.Image,
			Quantity:     line.Quantity,
			UnitPrice:    line.Product.Price,
		})
	}
	return order
}

// validateDraft re-checks the card-free draft. Card fields are gone by now
// so only the method and wallet id are checked on the payment side.
func validateDraft(draft checkoutdomain.Draft) error {
	if err := draft.Shipping.Validate(); err != nil {
		return err
	}
	if !draft.Payment.Method.Valid() {
		return checkoutdomain.ErrUnknownPaymentMethod
	}
	if draft.Payment.Method.IsWallet() && strings.TrimSpace(draft.Payment.WalletID) == "" {
		return &checkoutdomain.ValidationError{Fields: map[string]string{"upiId": "required"}}
	}
	return nil
}

func profileFromDraft(draft checkoutdomain.Draft) ports.ShippingProfile {
	s := draft.Shipping.Trimmed()
	return ports.ShippingProfile{
		FullName: s.FullName(),
		Phone:    s.Phone,
		Street:   s.Street,
		City:     s.City,
		State:    s.State,
		ZipCode:  s.ZipCode,
	}
}

func subtotal(lines []cartdomain.Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Total())
	}
	return total
}
