package webhook

import "errors"

// Domain errors for webhook delivery, designed for wrapping and
// classification with errors.Is.
//
//   - Configuration errors: invalid setup or parameters (fail fast)
//   - Permanent failures: the endpoint rejected the delivery and a retry
//     cannot change the outcome (4xx except 408, 425, 429)
//   - Temporary failures: network errors, timeouts, 5xx responses
var (
	ErrInvalidConfiguration = errors.New("invalid webhook configuration")
	ErrPermanentFailure     = errors.New("permanent webhook failure")
	ErrTemporaryFailure     = errors.New("temporary webhook failure")
	ErrInvalidPayload       = errors.New("invalid webhook payload")
	ErrInvalidURL           = errors.New("invalid webhook URL")
	ErrTimeout              = errors.New("webhook request timeout")
	ErrSenderNil            = errors.New("sender cannot be nil")
)

// IsPermanent reports whether an error indicates a failure that retrying
// cannot fix.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanentFailure)
}
