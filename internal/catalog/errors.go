package catalog

import "errors"

// Load errors: all fatal at custom_init.
var (
	ErrStoreUnreadable   = errors.New("catalog: store file unreadable")
	ErrStoreMalformed    = errors.New("catalog: store file is not valid JSON")
	ErrDuplicateID       = errors.New("catalog: duplicate function id")
	ErrDuplicateName     = errors.New("catalog: duplicate function name")
	ErrIDsNotDense       = errors.New("catalog: function ids are not dense over [0, N)")
	ErrUnknownCallbackID = errors.New("catalog: callback group references unknown function id")
)
