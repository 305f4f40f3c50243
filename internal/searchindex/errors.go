package searchindex

import "errors"

// ErrIndexMissing is returned by Search when EnsureIndex has never run,
// which spec §4.10 maps to a 404 with an empty JSON array at the API
// boundary.
var ErrIndexMissing = errors.New("searchindex: index does not exist")
