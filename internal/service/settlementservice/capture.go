package settlementservice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/fees"
	"github.com/GlebRadaev/influmarket/internal/gateway"
	"github.com/GlebRadaev/influmarket/internal/metrics"
	"github.com/GlebRadaev/influmarket/internal/pg"
	"github.com/GlebRadaev/influmarket/internal/traces"
)

const maxCreditQuantity = 1000

// CapturePayment applies a checkout callback. The signature must match the
// order and payment ids. Repeating a capture that was already applied
// returns the settled state with Replayed set and changes nothing.
func (s *Service) CapturePayment(ctx context.Context, c domain.Capture) (*domain.CaptureResult, error) {
	if c.OrderID == "" || c.PaymentID == "" || c.Signature == "" {
		return nil, domain.Validationf("order id, payment id and signature are required")
	}
	if !s.verifier.VerifySignature(c.OrderID, c.PaymentID, c.Signature) {
		metrics.Captures.WithLabelValues("unknown", "rejected").Inc()
		zap.L().Warn("payment signature rejected", zap.String("order", c.OrderID), zap.String("payment", c.PaymentID))
		return nil, domain.ErrSignatureVerificationFailed
	}
	return s.capture(ctx, c)
}

// HandleWebhook applies a signed gateway webhook. Events other than a
// payment capture are acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) (*domain.CaptureResult, error) {
	if !s.verifier.VerifyWebhook(body, signature) {
		metrics.Captures.WithLabelValues("unknown", "rejected").Inc()
		zap.L().Warn("webhook signature rejected")
		return nil, domain.ErrSignatureVerificationFailed
	}
	event, err := gateway.ParseWebhook(body)
	if err != nil {
		return nil, err
	}
	if event.Event != gateway.EventPaymentCaptured {
		zap.L().Debug("ignoring webhook event", zap.String("event", event.Event))
		return nil, nil
	}
	orderID, paymentID, err := event.Capture()
	if err != nil {
		return nil, err
	}
	return s.capture(ctx, domain.Capture{OrderID: orderID, PaymentID: paymentID})
}

func (s *Service) capture(ctx context.Context, c domain.Capture) (*domain.CaptureResult, error) {
	ctx, span := traces.StartSpan(ctx, "settlement.CapturePayment")

	var (
		result *domain.CaptureResult
		stray  bool
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		result, stray = nil, false

		order, err := s.repos.Order.LockByGatewayOrderID(ctx, c.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NotFoundf("payment order %s", c.OrderID)
		}

		if order.Status == domain.OrderCaptured {
			if order.GatewayPaymentID != nil && *order.GatewayPaymentID == c.PaymentID {
				result, err = s.replay(ctx, order)
				return err
			}
			stray = true
			return &domain.StateError{Entity: "payment order", Current: string(order.Status)}
		}

		at := s.now()
		order.GatewayPaymentID = &c.PaymentID
		order.CapturedAt = &at
		if err := s.repos.Order.MarkCaptured(ctx, order); err != nil {
			return err
		}

		result = &domain.CaptureResult{Order: order}
		switch intent := order.Intent.(type) {
		case domain.EscrowFunding:
			result.Escrow, err = s.fundEscrow(ctx, intent, c, at)
		case domain.WalletTopUp:
			err = s.topUpWallet(ctx, order)
		case domain.CreditPurchase:
			err = s.grantCredits(ctx, order, intent)
		default:
			err = domain.Validationf("unknown settlement intent %T", order.Intent)
		}
		if err != nil {
			return err
		}

		intent := string(order.Intent.Type())
		pg.AfterCommit(ctx, func(context.Context) {
			metrics.Captures.WithLabelValues(intent, "applied").Inc()
		})
		return nil
	})

	if stray {
		s.refundStray(ctx, c)
	}
	if result != nil {
		span.SetAttributes(traces.Intent(string(result.Order.Intent.Type())))
	}
	traces.End(span, err)
	if err != nil {
		return nil, err
	}
	if result.Replayed {
		metrics.Captures.WithLabelValues(string(result.Order.Intent.Type()), "replayed").Inc()
		zap.L().Info("payment capture replayed", zap.String("payment", c.PaymentID))
	}
	return result, nil
}

func (s *Service) replay(ctx context.Context, order *domain.PaymentOrder) (*domain.CaptureResult, error) {
	result := &domain.CaptureResult{Order: order, Replayed: true}
	if funding, ok := order.Intent.(domain.EscrowFunding); ok {
		escrow, err := s.repos.Escrow.Get(ctx, funding.EscrowID)
		if err != nil {
			return nil, err
		}
		result.Escrow = escrow
	}
	return result, nil
}

// fundEscrow moves a created escrow into HELD_IN_ESCROW and books the
// platform fee as revenue.
func (s *Service) fundEscrow(ctx context.Context, intent domain.EscrowFunding, c domain.Capture, at time.Time) (*domain.Escrow, error) {
	escrow, err := s.repos.Escrow.GetForUpdate(ctx, intent.EscrowID)
	if err != nil {
		return nil, err
	}
	if escrow == nil {
		return nil, domain.NotFoundf("escrow %s", intent.EscrowID)
	}
	if err := escrow.Transition(domain.EscrowHeld, at); err != nil {
		return nil, err
	}
	escrow.PaymentStatus = domain.PaymentCaptured
	escrow.GatewayPaymentID = &c.PaymentID
	if c.Signature != "" {
		escrow.GatewaySignature = &c.Signature
	}
	if err := s.repos.Escrow.Update(ctx, escrow); err != nil {
		return nil, err
	}

	recorded, err := s.repos.Revenue.Record(ctx, &domain.PlatformRevenue{
		ID:               uuid.New(),
		EscrowID:         escrow.ID,
		GatewayPaymentID: c.PaymentID,
		Amount:           escrow.PlatformEarnings,
	})
	if err != nil {
		return nil, err
	}
	if !recorded {
		zap.L().Warn("platform revenue already recorded", zap.String("escrow", escrow.ID.String()))
	}

	pg.AfterCommit(ctx, func(context.Context) {
		metrics.EscrowTransitions.WithLabelValues(string(domain.EscrowHeld)).Inc()
	})
	s.notify(ctx, domain.Notification{
		UserID:  escrow.ProviderID,
		Title:   "Payment secured",
		Message: "The client funded the contract. The payment is held in escrow until the work is approved.",
		Type:    domain.NotifyPayment,
		Link:    escrowLink(escrow.ID),
	})
	return escrow, nil
}

func (s *Service) topUpWallet(ctx context.Context, order *domain.PaymentOrder) error {
	_, err := s.ledger.Credit(ctx, domain.Movement{
		AccountID:   order.UserID,
		Kind:        domain.KindWallet,
		Amount:      order.Amount,
		Description: "wallet top-up",
		Resource:    domain.ResourceRef{Type: domain.ResourcePaymentOrder, ID: order.ID.String()},
	})
	if err != nil {
		return err
	}
	s.notify(ctx, domain.Notification{
		UserID:  order.UserID,
		Title:   "Wallet topped up",
		Message: order.Amount.StringFixed(2) + " " + order.Currency + " was added to your wallet.",
		Type:    domain.NotifyWallet,
		Link:    "/wallet",
	})
	return nil
}

func (s *Service) grantCredits(ctx context.Context, order *domain.PaymentOrder, intent domain.CreditPurchase) error {
	_, err := s.ledger.Credit(ctx, domain.Movement{
		AccountID:   order.UserID,
		Kind:        intent.Kind,
		Amount:      decimal.NewFromInt(intent.Quantity),
		Description: "credit purchase",
		Resource:    domain.ResourceRef{Type: domain.ResourcePaymentOrder, ID: order.ID.String()},
	})
	if err != nil {
		return err
	}
	s.notify(ctx, domain.Notification{
		UserID:  order.UserID,
		Title:   "Credits added",
		Message: "Your credit purchase was completed.",
		Type:    domain.NotifyWallet,
		Link:    "/wallet/credits",
	})
	return nil
}

// refundStray returns a second payment made against an order that was
// already settled by another payment.
func (s *Service) refundStray(ctx context.Context, c domain.Capture) {
	zap.L().Warn("refunding duplicate payment", zap.String("order", c.OrderID), zap.String("payment", c.PaymentID))
	refundID, err := s.gateway.InitiateRefund(ctx, c.PaymentID, nil)
	if err != nil {
		zap.L().Error("failed to refund duplicate payment", zap.String("payment", c.PaymentID), zap.Error(err))
		return
	}
	zap.L().Info("duplicate payment refunded", zap.String("payment", c.PaymentID), zap.String("refund", refundID))
}

// CreateTopUpOrder opens a gateway order whose capture credits the wallet.
func (s *Service) CreateTopUpOrder(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.PaymentOrder, error) {
	if err := fees.ValidateAmount(amount); err != nil {
		return nil, err
	}
	return s.createOrder(ctx, userID, domain.WalletTopUp{}, amount, "top")
}

// CreateCreditPurchaseOrder opens a gateway order for quantity credits of
// kind, priced at the configured unit price.
func (s *Service) CreateCreditPurchaseOrder(ctx context.Context, userID uuid.UUID, kind domain.BalanceKind, quantity int64) (*domain.PaymentOrder, error) {
	if !kind.IsCredit() {
		return nil, domain.Validationf("%q is not a credit kind", kind)
	}
	if quantity <= 0 || quantity > maxCreditQuantity {
		return nil, domain.Validationf("quantity must be between 1 and %d", maxCreditQuantity)
	}
	price, ok := s.cfg.CreditPrices[kind]
	if !ok {
		return nil, domain.Validationf("no price configured for %s", kind)
	}
	amount := price.Mul(decimal.NewFromInt(quantity))
	return s.createOrder(ctx, userID, domain.CreditPurchase{Kind: kind, Quantity: quantity}, amount, "crd")
}

func (s *Service) createOrder(ctx context.Context, userID uuid.UUID, intent domain.SettlementIntent, amount decimal.Decimal, prefix string) (*domain.PaymentOrder, error) {
	ctx, span := traces.StartSpan(ctx, "settlement.CreateOrder",
		traces.UserID(userID.String()), traces.Intent(string(intent.Type())), traces.Amount(amount.String()))

	id := uuid.New()
	gwOrder, err := s.gateway.CreateOrder(ctx, amount, prefix+"_"+strings.ReplaceAll(id.String(), "-", ""), map[string]string{
		"user_id": userID.String(),
		"intent":  string(intent.Type()),
	})
	if err != nil {
		traces.End(span, err)
		zap.L().Error("failed to create gateway order", zap.String("intent", string(intent.Type())), zap.Error(err))
		return nil, err
	}

	order := &domain.PaymentOrder{
		ID:             id,
		UserID:         userID,
		Intent:         intent,
		Amount:         amount,
		Currency:       s.cfg.Currency,
		GatewayOrderID: gwOrder.ID,
		Status:         domain.OrderCreated,
	}
	err = s.repos.Order.Create(ctx, order)
	traces.End(span, err)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, userID uuid.UUID) ([]domain.PaymentOrder, error) {
	orders, err := s.repos.Order.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to list payment orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}
