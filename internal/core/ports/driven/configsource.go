package driven

import "github.com/nestdesk/searchcore/internal/core/domain"

// ConfigSource supplies the current configuration. A plain
// domain.Config satisfies it; the file adapter returns hot-reloaded
// values instead.
type ConfigSource interface {
	Config() domain.Config
}
