package settlementservice_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/influmarket/internal/cache"
	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/fees"
	"github.com/GlebRadaev/influmarket/internal/pg"
	"github.com/GlebRadaev/influmarket/internal/pgtest"
	"github.com/GlebRadaev/influmarket/internal/repo"
	"github.com/GlebRadaev/influmarket/internal/service/ledgerservice"
	"github.com/GlebRadaev/influmarket/internal/service/settlementservice"
)

type stubGateway struct{}

func (stubGateway) CreateOrder(_ context.Context, amount decimal.Decimal, receipt string, _ map[string]string) (*domain.GatewayOrder, error) {
	return &domain.GatewayOrder{ID: "order_" + receipt, Amount: amount, Currency: "INR", Receipt: receipt}, nil
}

func (stubGateway) InitiateRefund(context.Context, string, *decimal.Decimal) (string, error) {
	return "rfnd_stub", nil
}

type acceptAll struct{}

func (acceptAll) VerifySignature(string, string, string) bool { return true }
func (acceptAll) VerifyWebhook([]byte, string) bool         { return true }

type discard struct{}

func (discard) Notify(context.Context, domain.Notification) {}

type fixture struct {
	pool       *pgxpool.Pool
	ledger     *ledgerservice.Service
	settlement *settlementservice.Service
}

func newFixture(t *testing.T) *fixture {
	pool := pgtest.Pool(t)
	txManager := pg.NewTXManager(pool)
	repos := repo.New(pg.New(pool), txManager)
	ledger := ledgerservice.New(repos.Balance, txManager, cache.NewBalanceCache(nil, time.Minute))

	settlement := settlementservice.New(
		settlementservice.Repositories{
			Escrow:   repos.Escrow,
			Contract: repos.Contract,
			Order:    repos.Order,
			Revenue:  repos.Revenue,
			Dispute:  repos.Dispute,
		},
		ledger, stubGateway{}, acceptAll{}, discard{}, txManager,
		settlementservice.Config{
			Fees: fees.Config{
				GatewayFeePercent:  decimal.RequireFromString("2.36"),
				PlatformFeePercent: decimal.NewFromInt(10),
			},
			Currency: "INR",
		},
	)
	return &fixture{pool: pool, ledger: ledger, settlement: settlement}
}

// heldEscrow seeds a client, a provider and an active contract, then funds
// its escrow through a capture.
func (f *fixture) heldEscrow(t *testing.T, price string) (*domain.Escrow, domain.Capture) {
	ctx := context.Background()
	clientID, providerID, contractID := uuid.New(), uuid.New(), uuid.New()

	_, err := f.pool.Exec(ctx, `INSERT INTO profiles (id, role) VALUES ($1, 'client'), ($2, 'influencer')`, clientID, providerID)
	require.NoError(t, err)
	_, err = f.pool.Exec(ctx, `INSERT INTO contracts (id, client_id, provider_id, agreed_price) VALUES ($1, $2, $3, $4)`,
		contractID, clientID, providerID, decimal.RequireFromString(price))
	require.NoError(t, err)

	escrow, err := f.settlement.CreateEscrow(ctx, clientID, contractID)
	require.NoError(t, err)

	capture := domain.Capture{OrderID: escrow.GatewayOrderID, PaymentID: "pay_" + escrow.ID.String(), Signature: "sig"}
	result, err := f.settlement.CapturePayment(ctx, capture)
	require.NoError(t, err)
	require.Equal(t, domain.EscrowHeld, result.Escrow.Status)
	return result.Escrow, capture
}

func TestSettlement_ConcurrentApprovePaysOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	escrow, _ := f.heldEscrow(t, "1000.00")
	_, err := f.settlement.SubmitWork(ctx, escrow.ProviderID, escrow.ID)
	require.NoError(t, err)

	const attempts = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		paid     int
		rejected int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.settlement.Approve(ctx, escrow.ClientID, escrow.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				paid++
			case errors.Is(err, domain.ErrInvalidStateTransition), errors.Is(err, domain.ErrConcurrencyConflict):
				rejected++
			default:
				t.Errorf("unexpected approve error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, paid)
	assert.Equal(t, attempts-1, rejected)

	balance, err := f.ledger.GetBalance(ctx, escrow.ProviderID, domain.KindWallet)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.RequireFromString("876.40")), "provider wallet %s", balance.Balance)

	entries, err := f.ledger.History(ctx, escrow.ProviderID, domain.KindWallet, 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	var contractStatus string
	require.NoError(t, f.pool.QueryRow(ctx, `SELECT status FROM contracts WHERE id = $1`, escrow.ContractID).Scan(&contractStatus))
	assert.Equal(t, string(domain.ContractCompleted), contractStatus)
}

func TestSettlement_CaptureReplayRecordsRevenueOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	escrow, capture := f.heldEscrow(t, "1000.00")

	result, err := f.settlement.CapturePayment(ctx, capture)
	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, domain.EscrowHeld, result.Escrow.Status)

	var (
		records int
		amount  decimal.Decimal
	)
	require.NoError(t, f.pool.QueryRow(ctx,
		`SELECT count(*), coalesce(sum(amount), 0) FROM platform_revenue WHERE escrow_id = $1`, escrow.ID,
	).Scan(&records, &amount))
	assert.Equal(t, 1, records)
	assert.True(t, amount.Equal(decimal.NewFromInt(100)), "revenue %s", amount)
}

func TestSettlement_RefundCreditsAmountAfterGateway(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	escrow, _ := f.heldEscrow(t, "1000.00")
	refunded, err := f.settlement.Refund(ctx, escrow.ClientID, escrow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowRefunded, refunded.Status)

	balance, err := f.ledger.GetBalance(ctx, escrow.ClientID, domain.KindWallet)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.RequireFromString("976.40")), "client wallet %s", balance.Balance)

	_, err = f.settlement.Approve(ctx, escrow.ClientID, escrow.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}
