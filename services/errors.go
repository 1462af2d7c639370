package services

import (
	goerrors "github.com/goliatone/go-errors"
)

// Domain error constructors. Handlers map categories onto HTTP statuses;
// only CategoryInternal represents a possibly-partial state (treated as not
// committed, safe to retry).

func errNotFound(msg string) error {
	return goerrors.New(msg, goerrors.CategoryNotFound).WithCode(goerrors.CodeNotFound)
}

func errConflict(msg string) error {
	return goerrors.New(msg, goerrors.CategoryConflict).WithCode(goerrors.CodeConflict)
}

func errValidation(msg string) error {
	return goerrors.New(msg, goerrors.CategoryValidation).WithCode(goerrors.CodeBadRequest)
}

func errPersistence(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).WithCode(goerrors.CodeInternal)
}

// isNotFound reports whether err carries the not-found category.
func isNotFound(err error) bool {
	var gerr *goerrors.Error
	return goerrors.As(err, &gerr) && gerr.Category == goerrors.CategoryNotFound
}
