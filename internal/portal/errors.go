package portal

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrAlreadyCompleted is matched by an *APIError the server raises when a
	// quest action was already completed for the account.
	ErrAlreadyCompleted = errors.New("quest already completed")
	ErrInvalidResponse  = errors.New("invalid response format")
)

const alreadyCompletedMessage = "already completed"

type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: http %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: http %d", e.Endpoint, e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	return target == ErrAlreadyCompleted && e.AlreadyCompleted()
}

func (e *APIError) AlreadyCompleted() bool {
	return e.StatusCode == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(e.Message), alreadyCompletedMessage)
}
