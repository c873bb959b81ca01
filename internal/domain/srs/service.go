package srs

import (
	"errors"
	"time"

	"github.com/karuta-app/karuta-api/internal/domain"
)

// Common errors
var (
	ErrNilRecord    = errors.New("review record cannot be nil")
	ErrInvalidGrade = errors.New("invalid grade")
)

// Service defines the interface for SM-2 scheduling operations. It is the
// single source of truth for how review quality maps to future scheduling;
// every deck delegates here rather than carrying its own variant.
type Service interface {
	// GradeRecord computes a new review record from a grade.
	// The returned record has updated interval, repetition, ease factor,
	// due date and last-studied time; the input is not modified.
	GradeRecord(
		record *domain.ReviewRecord,
		grade Grade,
		now time.Time,
	) (*domain.ReviewRecord, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// GradeRecord implements the Service interface.
func (s *defaultService) GradeRecord(
	record *domain.ReviewRecord,
	grade Grade,
	now time.Time,
) (*domain.ReviewRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}
	if !grade.Valid() {
		return nil, ErrInvalidGrade
	}

	return calculateNextRecord(record, grade, now, s.params), nil
}
