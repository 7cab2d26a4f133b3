package domain

import "errors"

var (
	// ErrInvalidBatch indicates a generated batch violated the question contract.
	ErrInvalidBatch = errors.New("invalid question batch")
	// ErrCommentRejected is returned when a community comment could not be saved.
	ErrCommentRejected = errors.New("comment rejected")
	// ErrNotConfigured indicates a collaborator is missing its configuration.
	ErrNotConfigured = errors.New("not configured")
)

// FetchError carries the human-readable, localized failure message surfaced
// in the session error state.
type FetchError struct {
	Lang Language
	Err  error
}

func (e *FetchError) Error() string {
	return e.Message()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Message returns the client-facing wording for the session's language.
func (e *FetchError) Message() string {
	if e.Lang == LangArabic {
		return "فشل التحميل، حاول مجدداً."
	}
	return "Failed to load, try again."
}
