package tmvalidate

import "errors"

var errNoLoader = errors.New("validator has no engine loader")
