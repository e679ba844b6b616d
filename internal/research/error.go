package research

import "errors"

// ErrInvalidQuery is returned for malformed research queries.
var ErrInvalidQuery = errors.New("invalid research query")
