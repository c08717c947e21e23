package editor

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-docblocks/pkg/resolve"
)

// Option configures the Editor.
type Option func(*Editor)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithRelationshipLookup resolves entered relationship ids into records so the
// edited value carries labels. Without it ids are stored unresolved.
func WithRelationshipLookup(fetch resolve.FetchFunc) Option {
	return func(e *Editor) {
		e.lookup = fetch
	}
}

// WithLogger sets the logger used for commit debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}
