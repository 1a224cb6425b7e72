package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ContractStatus string

const (
	ContractActive    ContractStatus = "ACTIVE"
	ContractCompleted ContractStatus = "COMPLETED"
	ContractCancelled ContractStatus = "CANCELLED"
	ContractDisputed  ContractStatus = "DISPUTED"
)

type Contract struct {
	ID          uuid.UUID       `db:"id"`
	ClientID    uuid.UUID       `db:"client_id"`
	ProviderID  uuid.UUID       `db:"provider_id"`
	AgreedPrice decimal.Decimal `db:"agreed_price"`
	Status      ContractStatus  `db:"status"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

type NotificationType string

const (
	NotifyPayment  NotificationType = "PAYMENT"
	NotifyContract NotificationType = "CONTRACT"
	NotifyDispute  NotificationType = "DISPUTE"
	NotifyWallet   NotificationType = "WALLET"
)

type Notification struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	UserID    uuid.UUID        `db:"user_id" json:"user_id"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	Link      string           `db:"link" json:"link"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
