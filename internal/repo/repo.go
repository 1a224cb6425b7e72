package repo

import (
	"github.com/GlebRadaev/influmarket/internal/pg"
	balancerepo "github.com/GlebRadaev/influmarket/internal/repo/balance-repo"
	contractrepo "github.com/GlebRadaev/influmarket/internal/repo/contract-repo"
	disputerepo "github.com/GlebRadaev/influmarket/internal/repo/dispute-repo"
	escrowrepo "github.com/GlebRadaev/influmarket/internal/repo/escrow-repo"
	notificationrepo "github.com/GlebRadaev/influmarket/internal/repo/notification-repo"
	orderrepo "github.com/GlebRadaev/influmarket/internal/repo/order-repo"
	revenuerepo "github.com/GlebRadaev/influmarket/internal/repo/revenue-repo"
	userrepo "github.com/GlebRadaev/influmarket/internal/repo/user-repo"
)

type Repositories struct {
	Balance      *balancerepo.Repository
	Escrow       *escrowrepo.Repository
	Contract     *contractrepo.Repository
	Order        *orderrepo.Repository
	Revenue      *revenuerepo.Repository
	Dispute      *disputerepo.Repository
	User         *userrepo.Repository
	Notification *notificationrepo.Repository
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		Balance:      balancerepo.New(conn, txManager),
		Escrow:       escrowrepo.New(conn),
		Contract:     contractrepo.New(conn),
		Order:        orderrepo.New(conn, txManager),
		Revenue:      revenuerepo.New(conn),
		Dispute:      disputerepo.New(conn),
		User:         userrepo.New(conn),
		Notification: notificationrepo.New(conn),
	}
}
