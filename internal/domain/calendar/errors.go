package calendar

import "errors"

var (
	// Weekly-off Assignment Errors
	ErrOverlappingAssignment = errors.New("overlapping weekly-off assignment detected")

	// Holiday Errors
	ErrHolidayExists = errors.New("holiday already exists for this date")

	// Validation Errors
	ErrInvalidDateRange = errors.New("to date must not be before from date")
)
