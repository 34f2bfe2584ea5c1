package config

import (
	"fmt"
	"strings"
)

// NonEmpty returns an error naming every env var whose value is empty.
// Arguments come in value, name pairs.
func NonEmpty(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i] == "" {
			missing = append(missing, pairs[i+1])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env %s", strings.Join(missing, ", "))
	}
	return nil
}
