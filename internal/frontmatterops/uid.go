package frontmatterops

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// EnsureUID adds a random uid when the key is missing.
func EnsureUID(fields map[string]any) (uid string, changed bool, err error) {
	if fields == nil {
		return "", false, errors.New("fields map is nil")
	}

	if v, ok := fields["uid"]; ok && v != nil {
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return s, false, nil
		}
	}

	uid = uuid.NewString()
	fields["uid"] = uid
	return uid, true, nil
}

// ValidUID reports whether s parses as a UUID.
func ValidUID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}
