package settings

import "errors"

// ErrUnknownSetting indicates a notification key that doesn't exist.
var ErrUnknownSetting = errors.New("unknown notification setting")
