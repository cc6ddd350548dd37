package auction

import "github.com/pkg/errors"

// Error kinds. Every failure returned by an Auction matches exactly one
// of these with errors.Is.
var (
	ErrSchedule           = errors.New("schedule error")
	ErrPhase              = errors.New("phase error")
	ErrAuthorization      = errors.New("authorization error")
	ErrConsistency        = errors.New("consistency error")
	ErrCommitment         = errors.New("commitment error")
	ErrAlreadySettled     = errors.New("already settled")
	ErrIneligibleTeardown = errors.New("ineligible teardown")
)

// Concrete failures. Each one also matches its kind.
var (
	ErrInvalidSchedule    = newFailure(ErrSchedule, "invalid schedule")
	ErrInvalidPricingRule = newFailure(ErrSchedule, "invalid pricing rule")
	ErrInvalidParams      = newFailure(ErrSchedule, "invalid parameters")
	ErrTooLate            = newFailure(ErrPhase, "too late")
	ErrAlreadySetUp       = newFailure(ErrPhase, "already set up")
	ErrNotSetUp           = newFailure(ErrPhase, "asset not escrowed")
	ErrNotStarted         = newFailure(ErrPhase, "not started")
	ErrEnded              = newFailure(ErrPhase, "ended")
	ErrWrongPhase         = newFailure(ErrPhase, "wrong phase")
	ErrNotEnded           = newFailure(ErrPhase, "not ended")
	ErrTerminated         = newFailure(ErrPhase, "terminated")
	ErrNotSeller          = newFailure(ErrAuthorization, "not seller")
	ErrNotWinner          = newFailure(ErrAuthorization, "not winner")
	ErrBidTooLow          = newFailure(ErrConsistency, "bid too low")
	ErrMalformedGroup     = newFailure(ErrConsistency, "malformed group")
	ErrDigestMismatch     = newFailure(ErrCommitment, "digest mismatch")
	ErrNoSuchCommitment   = newFailure(ErrCommitment, "no such commitment")
	ErrMalformedDigest    = newFailure(ErrCommitment, "malformed digest")
	ErrAlreadyPaid        = newFailure(ErrAlreadySettled, "already paid")
	ErrNotEligible        = newFailure(ErrIneligibleTeardown, "not eligible")
)

var kinds = []error{
	ErrSchedule,
	ErrPhase,
	ErrAuthorization,
	ErrConsistency,
	ErrCommitment,
	ErrAlreadySettled,
	ErrIneligibleTeardown,
}

type failure struct {
	kind error
	msg  string
}

func newFailure(kind error, msg string) error {
	return &failure{
		kind: kind,
		msg:  msg,
	}
}

func (f *failure) Error() string {
	return f.msg
}

func (f *failure) Is(target error) bool {
	return target == f.kind
}

// Kind returns the error kind err belongs to, or nil if err did not
// originate in this package.
func Kind(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
