// Package uuid generates and validates the identifiers used for every
// document in the ledger.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New generates a new time-ordered UUIDv7, suitable for primary keys.
// It falls back to a random UUIDv4 if the v7 generator fails.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse validates a UUID string and returns its canonical form.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}

// FilterValid returns the canonical, de-duplicated valid ids from ids in
// their original order, together with how many entries were dropped.
func FilterValid(ids []string) (valid []string, dropped int) {
	seen := make(map[string]struct{}, len(ids))
	for _, raw := range ids {
		id, err := Parse(raw)
		if err != nil {
			dropped++
			continue
		}
		if _, dup := seen[id]; dup {
			dropped++
			continue
		}
		seen[id] = struct{}{}
		valid = append(valid, id)
	}
	return valid, dropped
}
