package authclient

import (
	"context"
	"time"

	autherrors "codeberg.org/wastewatch/authclient/internal/errors"
	"codeberg.org/wastewatch/authclient/internal/identity"
	"codeberg.org/wastewatch/authclient/internal/logger"
)

// undoes a registration whose later step failed with cause. the outcome
// carries cause's message; it is an inconsistent state when the provider
// account survives.
func (c *Client) compensate(ctx context.Context, user *identity.User, cause error) Outcome {
	message := messageOr(cause, msgRegistrationFailed)

	if err := c.deleteAccount(ctx, user); err != nil {
		logger.Error("registration left an orphaned provider account",
			"uid", user.UID,
			"cause", cause,
			"error", err,
			"category", autherrors.Classify(err),
		)
		return failed(KindInconsistentState, message)
	}

	return failedWith(cause, message)
}

// deletes the provider account with retries. it runs detached from ctx's
// cancellation so an abandoned call still cleans up.
func (c *Client) deleteAccount(ctx context.Context, user *identity.User) error {
	ctx = context.WithoutCancel(ctx)
	backoff := c.rollbackBackoff

	var err error
	for attempt := 1; attempt <= c.rollbackAttempts; attempt++ {
		err = c.provider.DeleteUser(ctx, user)
		if err == nil {
			logger.Info("rolled back provider account", "uid", user.UID, "attempt", attempt)
			return nil
		}

		logger.Warn("rollback attempt failed",
			"uid", user.UID,
			"attempt", attempt,
			"error", err,
		)

		if attempt == c.rollbackAttempts {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-c.shutdown.Done():
			timer.Stop()
			logger.Warn("shutting down, abandoning rollback", "uid", user.UID, "attempt", attempt)
			return &autherrors.RollbackError{UID: user.UID, Err: err}
		}

		backoff *= 2
	}

	return &autherrors.RollbackError{UID: user.UID, Err: err}
}
