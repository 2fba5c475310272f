package pipeline

// Stage names the pipeline step a dataset failed in.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageExtract Stage = "extract"
	StageDecode  Stage = "decode"
	StageCache   Stage = "cache"
)

// DatasetError records a failure scoped to one dataset. Err is the underlying
// sentinel-wrapping error; Text holds the normalized text when the failure
// happened after extraction.
type DatasetError struct {
	Dataset string
	Stage   Stage
	Text    string
	Err     error
}

// Error returns the dataset and stage followed by the cause.
func (e *DatasetError) Error() string {
	return "dataset " + e.Dataset + ": " + string(e.Stage) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *DatasetError) Unwrap() error {
	return e.Err
}
