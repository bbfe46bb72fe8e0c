package service

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
)

// canonicalID returns the lowercase hyphenated form of a UUID, or "" when id is
// not one. Stored ids are compared as text, so lookups must use this form.
func canonicalID(id string) string {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return ""
	}
	return parsed.String()
}

func internalError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func validationError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// lookupError maps a repository read failure: missing rows become NotFound with
// notFoundMessage, anything else is internal.
func lookupError(err error, notFoundMessage string) *appErrors.Error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMessage)
	}
	return internalError(err, "failed to load "+strings.ToLower(strings.TrimSuffix(notFoundMessage, " not found")))
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if canonical := canonicalID(id); canonical != "" {
			id = canonical
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
