package heatmap

import "errors"

var ErrUnknownOption = errors.New("heatmap: unknown option")
