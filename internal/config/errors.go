package config

import "formdesk/internal/domain"

// ErrMissing is returned for absent or contradictory settings.
var ErrMissing = domain.ErrMissingConfig
