package services

import (
	"errors"
	"fmt"

	"github.com/sankat-mitra/api/database"
	"github.com/sankat-mitra/api/services/ragagent"
)

// Error taxonomy for the conversation core. Store and inference failures are
// converted to user-visible text at the responder/controller boundary and
// never terminate the interaction loop; NotFound on deletion/selection is an
// expected race between devices and treated as already satisfied.
var (
	ErrStoreUnavailable     = errors.New("durable store unavailable")
	ErrInferenceUnavailable = errors.New("inference service unavailable")
	ErrNotFound             = errors.New("not found")
	ErrInvariantViolation   = errors.New("invariant violation")
)

// wrapStoreErr maps a storage error into the service taxonomy, keeping the
// original cause in the chain for logs.
func wrapStoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

// classifyInferenceErr tags a retrieval+LLM collaborator failure with the
// taxonomy sentinel. Timeouts are called out separately: the calling layer
// owns the request deadline, and an expired one reads very differently in
// logs than a refused connection.
func classifyInferenceErr(err error) error {
	if err == nil {
		return nil
	}
	if ragagent.IsTimeoutError(err) {
		return fmt.Errorf("%w: timed out: %v", ErrInferenceUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrInferenceUnavailable, err)
}
