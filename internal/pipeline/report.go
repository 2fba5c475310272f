package pipeline

import (
	"errors"
	"time"

	"github.com/papapumpkin/textage/internal/decode"
)

// Outcome is the result of processing one dataset.
type Outcome struct {
	Dataset string
	Source  Source
	Path    string // cache artifact
	Entries int
	Result  decode.Result
	Elapsed time.Duration
	Err     error // nil on success; a *DatasetError otherwise
}

// OK reports whether the dataset succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Report summarizes a run.
type Report struct {
	RunID    string
	Outcomes []Outcome
	Elapsed  time.Duration
}

// Failed returns the number of failed datasets.
func (r *Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

// Err joins every dataset failure, or returns nil when all succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// Outcome returns the outcome recorded for dataset.
func (r *Report) Outcome(dataset string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Dataset == dataset {
			return o, true
		}
	}
	return Outcome{}, false
}

func asDatasetError(err error) *DatasetError {
	var de *DatasetError
	if errors.As(err, &de) {
		return de
	}
	return &DatasetError{Err: err}
}
