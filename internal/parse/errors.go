package parse

import "errors"

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrParseFailed         = errors.New("failed to parse file")
)
