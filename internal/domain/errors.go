package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDomain is returned when a request names a domain outside the registry.
	ErrInvalidDomain = errors.New("invalid domain")
	// ErrInvalidTestType is returned for a test type outside the known set.
	ErrInvalidTestType = errors.New("invalid test type")
	// ErrInvalidQuestionCount is returned when the requested question count is out of range.
	ErrInvalidQuestionCount = errors.New("invalid question count")
	// ErrInvalidDistribution indicates negative or all-zero tier weights.
	ErrInvalidDistribution = errors.New("invalid difficulty distribution")
	// ErrUnknownQuestionType indicates catalog content with an unsupported type.
	ErrUnknownQuestionType = errors.New("unknown question type")

	// ErrSessionNotFound is returned when a session does not exist or belongs to another user.
	ErrSessionNotFound = errors.New("test session not found")
	// ErrDomainNotFound indicates the sampler was asked for an unregistered domain.
	ErrDomainNotFound = errors.New("domain not found")

	// ErrSessionNotInProgress is returned when submitting or abandoning a terminal session.
	ErrSessionNotInProgress = errors.New("test session is not in progress")

	// ErrCatalogEmpty indicates sampling produced no questions.
	ErrCatalogEmpty = errors.New("question catalog is empty")
	// ErrNoQuestionsAvailable is returned by session creation when the catalog has nothing to offer.
	ErrNoQuestionsAvailable = errors.New("no questions available for this domain")

	// ErrSessionExists is returned by stores asked to create a duplicate session id.
	ErrSessionExists = errors.New("test session already exists")
)

// Kind classifies errors for the transport boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindCatalog
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "state_conflict"
	case KindCatalog:
		return "catalog_error"
	}
	return "internal_error"
}

// ValidationError reports a user-correctable problem with a request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// KindOf maps an error chain to its taxonomy entry.
func KindOf(err error) Kind {
	var verr *ValidationError
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &verr),
		errors.Is(err, ErrInvalidDomain),
		errors.Is(err, ErrInvalidTestType),
		errors.Is(err, ErrInvalidQuestionCount),
		errors.Is(err, ErrInvalidDistribution):
		return KindValidation
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrDomainNotFound):
		return KindNotFound
	case errors.Is(err, ErrSessionNotInProgress):
		return KindConflict
	case errors.Is(err, ErrCatalogEmpty), errors.Is(err, ErrNoQuestionsAvailable):
		return KindCatalog
	}
	return KindInternal
}
