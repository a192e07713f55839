package services

import "errors"

// Table service errors.
var (
	ErrTableNotFound       = errors.New("table not found")
	ErrTableEmpty          = errors.New("table is empty")
	ErrWorkbookUnavailable = errors.New("workbook unavailable")
)
