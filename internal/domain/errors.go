package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrAccountNotFound = errors.New("account not found")
	ErrLoadFailed      = errors.New("ledger snapshot could not be loaded")
	ErrNotReady        = errors.New("ledger not loaded yet")
	ErrTransferFailed  = errors.New("transfer failed and was compensated")
	ErrPartialTransfer = errors.New("transfer partially applied")
)
