package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest    = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed  = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound  = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError     = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}
	ErrInvalidAmount     = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrInvalidType       = &AppError{http.StatusBadRequest, "INVALID_TRANSACTION_TYPE", "Type must be deposit or withdrawal"}
	ErrAccountNotFound   = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_NOT_FOUND", "Account not found"}
	ErrLedgerNotReady    = &AppError{http.StatusServiceUnavailable, "LEDGER_NOT_READY", "Ledger is still loading"}
	ErrLedgerUnavailable = &AppError{http.StatusServiceUnavailable, "LEDGER_UNAVAILABLE", "Ledger could not be loaded"}
	ErrTransferFailed    = &AppError{http.StatusUnprocessableEntity, "TRANSFER_FAILED", "Transfer could not be completed and was rolled back"}
	ErrPartialTransfer   = &AppError{http.StatusInternalServerError, "PARTIAL_TRANSFER", "Sender was debited but the recipient could not be credited"}
)
