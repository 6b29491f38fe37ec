package punch

import "errors"

var (
	ErrInvalidKind         = errors.New("punch: invalid kind")
	ErrInvalidEmployeeName = errors.New("punch: invalid employee name")
	ErrInvalidDateRange    = errors.New("punch: invalid date range")
	ErrInvalidPageSize     = errors.New("punch: invalid page size")
	ErrInvalidPageToken    = errors.New("punch: invalid page token")
)
