package growbuf

import "errors"

// ErrNoData occurs when a source was exhausted before a single byte could be
// read. It lets callers tell an end of stream apart from an empty line.
var ErrNoData = errors.New("no data")
