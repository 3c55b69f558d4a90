package board

import "errors"

var (
	ErrUnsupportedImage = errors.New("board: unsupported image")
	ErrInvalidSetting   = errors.New("board: invalid setting")
)
