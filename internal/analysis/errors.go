package analysis

import "errors"

var (
	ErrRepositoryDisabled = errors.New("repository is disabled")
	ErrNotADirectory      = errors.New("repository path is not a directory")
)
