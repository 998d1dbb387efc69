// Package notify delivers ledger success messages to people watching the
// ledger. Delivery is best effort; callers log failures and move on.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

type Notifier interface {
	NotifySuccess(ctx context.Context, message string) error
}

// Log writes each message to the request logger.
type Log struct{}

func (Log) NotifySuccess(ctx context.Context, message string) error {
	logging.FromContext(ctx).Info("notification", "message", message)
	return nil
}

// Multi fans a message out to every notifier, even when some fail.
type Multi []Notifier

func (m Multi) NotifySuccess(ctx context.Context, message string) error {
	var errs []error
	for i, n := range m {
		if err := n.NotifySuccess(ctx, message); err != nil {
			errs = append(errs, fmt.Errorf("notifier %d: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("NotifySuccess: %w", err)
	}
	return nil
}
