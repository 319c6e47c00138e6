package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayScale is the number of fractional digits stored for day counts and balances.
const DayScale int32 = 2

// LeaveType is keyed by its unique human-readable name; balances reference the name.
type LeaveType struct {
	Name              string
	IsPaid            bool
	DefaultAllocation *decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type ApplicationStatus string

const (
	StatusPending                ApplicationStatus = "pending"
	StatusApproved               ApplicationStatus = "approved"
	StatusRejected               ApplicationStatus = "rejected"
	StatusCancelled              ApplicationStatus = "cancelled"
	StatusCancellationPending    ApplicationStatus = "cancellation_pending"
	StatusOverriddenByCorrection ApplicationStatus = "overridden_by_correction"
)

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusCancellationPending, StatusOverriddenByCorrection:
		return true
	}
	return false
}

func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusOverriddenByCorrection
}

// HoldsDebit reports whether the ledger currently carries this application's paid days.
func (s ApplicationStatus) HoldsDebit() bool {
	return s == StatusApproved || s == StatusCancellationPending
}

// ActiveStatuses are the non-terminal states.
var ActiveStatuses = []ApplicationStatus{StatusPending, StatusApproved, StatusCancellationPending}

// LeaveApplication. PaidDays and LOPDays are fixed when the application enters approved
// and are what a later cancellation credits back.
type LeaveApplication struct {
	ID           string
	EmployeeID   string
	LeaveType    string
	FromDate     time.Time
	ToDate       time.Time
	IsHalfDay    bool
	Reason       string
	Status       ApplicationStatus
	AdminComment *string
	PaidDays     decimal.Decimal
	LOPDays      decimal.Decimal
	DecidedBy    *string
	DecidedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a LeaveApplication) Covers(date time.Time) bool {
	return !date.Before(a.FromDate) && !date.After(a.ToDate)
}

// LeaveBalance is keyed by (EmployeeID, LeaveType).
type LeaveBalance struct {
	EmployeeID     string
	LeaveType      string
	CurrentBalance decimal.Decimal
	TotalAllocated decimal.Decimal
	UpdatedAt      time.Time
}

// Key identifies a balance row.
func (b LeaveBalance) Key() string {
	return BalanceKey(b.EmployeeID, b.LeaveType)
}

func BalanceKey(employeeID, leaveType string) string {
	return employeeID + "|" + leaveType
}

type AdjustOp string

const (
	AdjustAdd      AdjustOp = "add"
	AdjustSubtract AdjustOp = "subtract"
	AdjustSet      AdjustOp = "set"
)

func (o AdjustOp) IsValid() bool {
	return o == AdjustAdd || o == AdjustSubtract || o == AdjustSet
}

// Impact is the projected effect of a leave duration on a balance.
type Impact struct {
	Duration      decimal.Decimal
	PaidDays      decimal.Decimal
	LOPDays       decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// IsFullyPaid reports whether no part of the duration spills into LOP.
func (i Impact) IsFullyPaid() bool {
	return i.LOPDays.IsZero()
}
