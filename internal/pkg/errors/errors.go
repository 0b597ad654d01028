package errors

import "errors"

var (
	ErrIngestion  = errors.New("ingestion failed")
	ErrRetrieval  = errors.New("retrieval failed")
	ErrGeneration = errors.New("generation failed")
	ErrCleanup    = errors.New("cleanup failed")
	ErrInvalid    = errors.New("invalid")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

func IsGeneration(err error) bool {
	return errors.Is(err, ErrGeneration)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
