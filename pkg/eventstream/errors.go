package eventstream

import "errors"

// ErrNilProfileEvent indicates a nil profile event payload was provided to a publisher.
var ErrNilProfileEvent = errors.New("nil profile event")
