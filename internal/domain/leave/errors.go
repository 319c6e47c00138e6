package leave

import "errors"

var (
	// Leave type
	ErrLeaveTypeNotFound = errors.New("leave type not found")
	ErrLeaveTypeExists   = errors.New("leave type with this name already exists")
	ErrLeaveTypeInUse    = errors.New("leave type is referenced by leave balances or active applications")

	// Application
	ErrApplicationNotFound    = errors.New("leave application not found")
	ErrInvalidTransition      = errors.New("leave application status transition not allowed")
	ErrOverlappingApplication = errors.New("leave application overlaps an existing active application")

	// Ledger
	ErrBalanceNotFound     = errors.New("leave balance not found")
	ErrInsufficientBalance = errors.New("adjustment would make the leave balance negative")

	ErrEmployeeNotFound = errors.New("employee not found")
)
