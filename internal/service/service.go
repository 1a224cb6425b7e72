package service

import (
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/influmarket/internal/config"
	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/handlers/notification"
	"github.com/GlebRadaev/influmarket/internal/pg"
	"github.com/GlebRadaev/influmarket/internal/repo"
	"github.com/GlebRadaev/influmarket/internal/service/disputeservice"
	"github.com/GlebRadaev/influmarket/internal/service/ledgerservice"
	"github.com/GlebRadaev/influmarket/internal/service/settlementservice"
)

// Dependencies are the collaborators the services share besides storage.
type Dependencies struct {
	TxManager pg.TXManager
	Cache     ledgerservice.BalanceCache
	Gateway   settlementservice.Gateway
	Verifier  settlementservice.Verifier
	Notifier  settlementservice.Notifier
}

type Services struct {
	Ledger        *ledgerservice.Service
	Settlement    *settlementservice.Service
	Disputes      *disputeservice.Service
	Notifications notification.Service
}

func New(cfg *config.Config, repos *repo.Repositories, deps Dependencies) *Services {
	ledger := ledgerservice.New(repos.Balance, deps.TxManager, deps.Cache)

	settlement := settlementservice.New(
		settlementservice.Repositories{
			Escrow:   repos.Escrow,
			Contract: repos.Contract,
			Order:    repos.Order,
			Revenue:  repos.Revenue,
			Dispute:  repos.Dispute,
		},
		ledger,
		deps.Gateway,
		deps.Verifier,
		deps.Notifier,
		deps.TxManager,
		settlementservice.Config{
			Fees:     cfg.FeeSnapshot(),
			Currency: cfg.Currency,
			CreditPrices: map[domain.BalanceKind]decimal.Decimal{
				domain.KindBidCredit:  cfg.BidCreditPrice,
				domain.KindPostCredit: cfg.PostCreditPrice,
			},
		},
	)

	disputes := disputeservice.New(
		repos.Dispute,
		repos.Escrow,
		repos.Contract,
		repos.User,
		ledger,
		deps.Notifier,
		deps.TxManager,
	)

	return &Services{
		Ledger:        ledger,
		Settlement:    settlement,
		Disputes:      disputes,
		Notifications: repos.Notification,
	}
}
