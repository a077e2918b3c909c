package config

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Requirement is implemented by flag groups that need values to be set
type Requirement interface {
	// Missing returns the flag names of required values that are not set
	Missing() []string
}

// Validate checks every requirement and reports all missing values at once
func Validate(reqs ...Requirement) error {
	var missing []string
	for _, r := range reqs {
		if r == nil {
			continue
		}
		missing = append(missing, r.Missing()...)
	}

	if len(missing) == 0 {
		return nil
	}

	return goerr.Wrap(ErrConfiguration, "missing required configuration: "+strings.Join(missing, ", "),
		goerr.V(MissingKey, missing))
}
