package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("project not found")
	// ErrForbidden matches ErrNotFound so callers never reveal foreign projects.
	ErrForbidden        = fmt.Errorf("project belongs to another user: %w", ErrNotFound)
	ErrProjectExists    = errors.New("project id already taken")
	ErrNoDiscovery      = errors.New("project has no intent spec")
	ErrProjectBusy      = errors.New("project is busy")
	ErrInvalidSelection = errors.New("invalid component selection")
)
