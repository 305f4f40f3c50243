package docstore

import "errors"

var (
	ErrTaskNotFound = errors.New("docstore: task not found")
	ErrTaskExists   = errors.New("docstore: task already exists")
)
