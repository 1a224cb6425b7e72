package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/influmarket/docs"
	disputehandlers "github.com/GlebRadaev/influmarket/internal/handlers/dispute"
	escrowhandlers "github.com/GlebRadaev/influmarket/internal/handlers/escrow"
	notificationhandlers "github.com/GlebRadaev/influmarket/internal/handlers/notification"
	paymenthandlers "github.com/GlebRadaev/influmarket/internal/handlers/payment"
	wallethandlers "github.com/GlebRadaev/influmarket/internal/handlers/wallet"
	"github.com/GlebRadaev/influmarket/internal/metrics"
	"github.com/GlebRadaev/influmarket/internal/service"
	"github.com/GlebRadaev/influmarket/pkg/auth"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

type EscrowHandler interface {
	Quote(w http.ResponseWriter, r *http.Request)
	CreateEscrow(w http.ResponseWriter, r *http.Request)
	ListEscrows(w http.ResponseWriter, r *http.Request)
	GetEscrow(w http.ResponseWriter, r *http.Request)
	SubmitWork(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Refund(w http.ResponseWriter, r *http.Request)
	RaiseDispute(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	GetCredits(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	ConsumeCredit(w http.ResponseWriter, r *http.Request)
	TopUp(w http.ResponseWriter, r *http.Request)
	BuyCredits(w http.ResponseWriter, r *http.Request)
	ListOrders(w http.ResponseWriter, r *http.Request)
}

type PaymentHandler interface {
	Verify(w http.ResponseWriter, r *http.Request)
	Webhook(w http.ResponseWriter, r *http.Request)
}

type DisputeHandler interface {
	ListDisputes(w http.ResponseWriter, r *http.Request)
	GetDispute(w http.ResponseWriter, r *http.Request)
	AddEvidence(w http.ResponseWriter, r *http.Request)
	StartReview(w http.ResponseWriter, r *http.Request)
	Resolve(w http.ResponseWriter, r *http.Request)
}

type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	EscrowHandler       EscrowHandler
	WalletHandler       WalletHandler
	PaymentHandler      PaymentHandler
	DisputeHandler      DisputeHandler
	NotificationHandler NotificationHandler
	jwtService          auth.JWTServiceInterface
}

func New(s *service.Services, jwtService auth.JWTServiceInterface) *Handlers {
	return &Handlers{
		EscrowHandler:       escrowhandlers.New(s.Settlement),
		WalletHandler:       wallethandlers.New(s.Ledger, s.Settlement),
		PaymentHandler:      paymenthandlers.New(s.Settlement),
		DisputeHandler:      disputehandlers.New(s.Disputes),
		NotificationHandler: notificationhandlers.New(s.Notifications),
		jwtService:          jwtService,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// signed by the gateway, not by a user token
		r.Post("/payments/webhook", h.PaymentHandler.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(h.jwtService))

			r.Route("/escrows", func(r chi.Router) {
				r.Get("/quote", h.EscrowHandler.Quote)
				r.Post("/", h.EscrowHandler.CreateEscrow)
				r.Get("/", h.EscrowHandler.ListEscrows)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.EscrowHandler.GetEscrow)
					r.Post("/submit", h.EscrowHandler.SubmitWork)
					r.Post("/approve", h.EscrowHandler.Approve)
					r.Post("/refund", h.EscrowHandler.Refund)
					r.Post("/disputes", h.EscrowHandler.RaiseDispute)
				})
			})
			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", h.WalletHandler.GetBalance)
				r.Get("/history", h.WalletHandler.History)
				r.Post("/topup", h.WalletHandler.TopUp)
				r.Get("/orders", h.WalletHandler.ListOrders)
				r.Get("/credits", h.WalletHandler.GetCredits)
				r.Post("/credits", h.WalletHandler.BuyCredits)
				r.Post("/credits/consume", h.WalletHandler.ConsumeCredit)
			})
			r.Post("/payments/verify", h.PaymentHandler.Verify)
			r.Route("/disputes", func(r chi.Router) {
				r.Get("/", h.DisputeHandler.ListDisputes)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.DisputeHandler.GetDispute)
					r.Post("/evidence", h.DisputeHandler.AddEvidence)
					r.Post("/review", h.DisputeHandler.StartReview)
					r.Post("/resolve", h.DisputeHandler.Resolve)
				})
			})
			r.Get("/notifications", h.NotificationHandler.List)
		})
	})

	return r
}
