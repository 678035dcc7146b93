package source

import "errors"

// Terminal conditions of a load. Both abort the run.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrNoRecordsFound    = errors.New("no record files found")
)

// Per-file problems. They are collected in Batch.Failures and never abort a load.
var (
	ErrMalformedFile = errors.New("malformed record file")
	ErrNotAnObject   = errors.New("record is not a JSON object")
)
