package service

import (
	"errors"
	"fmt"
)

// Stage names a step of a pipeline run.
type Stage string

const (
	StageValidate Stage = "validate"
	StageFetch    Stage = "fetch"
	StageIndex    Stage = "index"
	StageLookup   Stage = "lookup"
	StagePersist  Stage = "persist"
)

const (
	PipelineUpload = "upload"
	PipelineQuery  = "query"
)

// StageError records where a pipeline run stopped. The wrapped error keeps its
// kind, so errors.Is still matches the adapter sentinels.
type StageError struct {
	Pipeline string
	Stage    Stage
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s pipeline failed at %s: %v", e.Pipeline, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf reports the stage at which err stopped a pipeline.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
