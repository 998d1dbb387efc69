package handler

import "net/http"

type Handlers struct {
	Health       *HealthHandler
	Transactions *TransactionHandler
	Accounts     *AccountHandler
}

func Routes(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health.Liveness)
	mux.HandleFunc("GET /health/ready", h.Health.Readiness)

	mux.HandleFunc("GET /api/openapi.yaml", ServeSpec)
	mux.HandleFunc("GET /api/docs", ServeDocs)

	mux.HandleFunc("GET /api/v1/transactions", h.Transactions.List)
	mux.HandleFunc("POST /api/v1/transactions", h.Transactions.Create)
	mux.HandleFunc("GET /api/v1/transactions/{id}", h.Transactions.Get)
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", h.Transactions.Delete)
	mux.HandleFunc("POST /api/v1/transfers", h.Transactions.Transfer)

	mux.HandleFunc("GET /api/v1/clients/{clientId}/transactions", h.Transactions.ListByClient)
	mux.HandleFunc("GET /api/v1/clients/{clientId}/accounts", h.Accounts.ListByClient)

	return mux
}
