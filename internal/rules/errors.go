package rules

import "errors"

var (
	// ErrInvalidDataset indicates a dataset record cannot drive an extraction.
	ErrInvalidDataset = errors.New("invalid dataset")
	// ErrUnknownDataset indicates a dataset name not present in the table.
	ErrUnknownDataset = errors.New("unknown dataset")
)
