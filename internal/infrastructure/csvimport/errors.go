package csvimport

import (
	"errors"
	"fmt"
	"sort"
)

// Row error codes
const (
	CodeRequired          = "REQUIRED_FIELD"
	CodeInvalidType       = "INVALID_TYPE"
	CodeInvalidLength     = "INVALID_LENGTH"
	CodeOutOfRange        = "OUT_OF_RANGE"
	CodeDuplicateInFile   = "DUPLICATE_IN_FILE"
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeReferenceNotFound = "REFERENCE_NOT_FOUND"
	CodeRejected          = "REJECTED"
)

// File level errors
var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("CSV file is not valid UTF-8")
	ErrMissingHeader   = errors.New("CSV file has no header row")
	ErrNoDataRows      = errors.New("CSV file contains no data rows")
	ErrMalformedRow    = errors.New("malformed CSV row")
	ErrTooManyRows     = errors.New("CSV file has too many rows")
)

// RowError is a problem with one field, or the whole row when Column is empty
type RowError struct {
	Line    int    `json:"line"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("line %d, column %q: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ErrorCollection keeps the first maxErrors row errors and counts the rest
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
	lines      map[int]struct{}
}

// NewErrorCollection creates a collection. maxErrors <= 0 means 100.
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		maxErrors: maxErrors,
		lines:     make(map[int]struct{}),
	}
}

// Add records err
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	ec.lines[err.Line] = struct{}{}
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// Addf records an error built from its parts
func (ec *ErrorCollection) Addf(line int, column, code, value, format string, args ...any) {
	ec.Add(RowError{
		Line:    line,
		Column:  column,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Value:   value,
	})
}

// Errors returns the kept errors ordered by line
func (ec *ErrorCollection) Errors() []RowError {
	sort.SliceStable(ec.errors, func(i, j int) bool {
		return ec.errors[i].Line < ec.errors[j].Line
	})
	return ec.errors
}

// TotalCount counts every error added, kept or not
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// IsTruncated reports whether errors were dropped past the limit
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}

// HasErrors reports whether any error was added
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// LineHasErrors reports whether any error was added for line
func (ec *ErrorCollection) LineHasErrors(line int) bool {
	_, ok := ec.lines[line]
	return ok
}

// FailedLines counts the distinct lines with at least one error
func (ec *ErrorCollection) FailedLines() int {
	return len(ec.lines)
}
