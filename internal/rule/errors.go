package rule

import "errors"

// ErrUnknownRule indicates a rule name that is not built in
var ErrUnknownRule = errors.New("unknown rule")
