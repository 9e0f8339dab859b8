package oracle

import "errors"

var (
	errNoOpenFunc = errors.New("no open function configured")
	errNilEngine  = errors.New("open returned no engine")
)

func asInitError(name string, err error) error {
	var ie *EngineInitError
	if errors.As(err, &ie) {
		return ie
	}
	return &EngineInitError{Engine: name, Err: err}
}
