package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role classifies an employee account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RoleSupport Role = "support"
)

// PayType describes how an employee is compensated.
type PayType string

const (
	PayDaily   PayType = "daily"
	PayMonthly PayType = "monthly"
	PayHourly  PayType = "hourly"
)

// PayInfo holds an employee's compensation terms.
type PayInfo struct {
	Type   PayType         `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// Employee is a worker account inside an organization. Token is the
// one-time autologin credential handed out as a link.
type Employee struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Role       Role     `json:"role"`
	Token      string   `json:"token"`
	ExternalID string   `json:"externalId,omitempty"`
	CanPunch   bool     `json:"canPunch"`
	ShiftStart string   `json:"shiftStart"`
	ShiftEnd   string   `json:"shiftEnd"`
	WorkDays   []int    `json:"workDays"`
	Pay        *PayInfo `json:"pay,omitempty"`
	IsTest     bool     `json:"isTest,omitempty"`
}

// Task is a scoreable daily task.
type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Points int    `json:"points"`
	Active bool   `json:"active"`
}

// TaskCompletion records an employee completing a task on a given day.
type TaskCompletion struct {
	ID     string `json:"id"`
	TaskID string `json:"taskId"`
	UserID string `json:"userId"`
	Date   string `json:"date"`
}

// TimeOffStatus is the review state of a time-off request.
type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "pending"
	TimeOffApproved TimeOffStatus = "approved"
	TimeOffDenied   TimeOffStatus = "denied"
)

// TimeOffRequest is an employee's request to skip a scheduled day.
type TimeOffRequest struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Date      string        `json:"date"`
	Status    TimeOffStatus `json:"status"`
	Note      string        `json:"note,omitempty"`
	CreatedAt string        `json:"createdAt"`
}

// PaymentStatus marks a payment as planned or settled.
type PaymentStatus string

const (
	PaymentPlanned PaymentStatus = "planned"
	PaymentPaid    PaymentStatus = "paid"
)

// PaymentKind classifies a payment entry.
type PaymentKind string

const (
	PaymentSalary     PaymentKind = "salary"
	PaymentDaily      PaymentKind = "daily"
	PaymentBonus      PaymentKind = "bonus"
	PaymentAdjustment PaymentKind = "adjustment"
)

// PaymentRecord is a single payroll entry.
type PaymentRecord struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Status      PaymentStatus   `json:"status"`
	Kind        PaymentKind     `json:"kind"`
	Note        string          `json:"note,omitempty"`
	CreatedAt   string          `json:"createdAt"`
	ExternalRef string          `json:"externalRef,omitempty"`
}

// AdminUser is a back-office account. PasswordHash is a bcrypt hash.
type AdminUser struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// Settings holds per-organization configuration. The geofence fields are
// the only ones the core inspects; the rest rides along opaquely.
type Settings struct {
	ShiftStart            string   `json:"shiftStart"`
	ShiftEnd              string   `json:"shiftEnd"`
	ToleranceMinutes      int      `json:"toleranceMinutes"`
	OvertimeAfter         string   `json:"overtimeAfter"`
	Locale                string   `json:"locale"`
	Currency              string   `json:"currency"`
	Timezone              string   `json:"timezone"`
	PayrollCycleStartDay  int      `json:"payrollCycleStartDay"`
	PayrollCycleLength    int      `json:"payrollCycleLengthDays"`
	GeofenceName          string   `json:"geofenceName"`
	GeofencePlusCode      string   `json:"geofencePlusCode"`
	GeofenceLat           float64  `json:"geofenceLat"`
	GeofenceLng           float64  `json:"geofenceLng"`
	GeofenceRadius        float64  `json:"geofenceRadius"`
	CleaningDay           int      `json:"cleaningDay"`
	CleaningStart         string   `json:"cleaningStart"`
	CleaningEnd           string   `json:"cleaningEnd"`
	CleaningNote          string   `json:"cleaningNote"`
	CleaningParticipants  []string `json:"cleaningParticipants"`
	MinStaff              int      `json:"minStaff"`
	MaxStaff              int      `json:"maxStaff"`
	MinWageMonthly        int      `json:"minWageMonthly"`
	MinWageHours          int      `json:"minWageHours"`
}

// Zone builds the geofence zone configured for this organization.
func (s Settings) Zone() GeofenceZone {
	return GeofenceZone{
		Center:       Coordinate{Latitude: s.GeofenceLat, Longitude: s.GeofenceLng},
		RadiusMeters: s.GeofenceRadius,
	}
}

// Organization is one tenant inside the shared document.
type Organization struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Employees       []Employee       `json:"employees"`
	Settings        Settings         `json:"settings"`
	Tasks           []Task           `json:"tasks"`
	Completions     []TaskCompletion `json:"completions"`
	TimeOffRequests []TimeOffRequest `json:"timeOffRequests"`
	Payments        []PaymentRecord  `json:"payments"`
	PunchRecords    []PunchRecord    `json:"punchRecords"`
}

// EmployeeByID returns the employee with the given id, or nil.
func (o *Organization) EmployeeByID(id string) *Employee {
	for i := range o.Employees {
		if o.Employees[i].ID == id {
			return &o.Employees[i]
		}
	}
	return nil
}

// EmployeeByToken returns the employee carrying the given autologin token, or nil.
func (o *Organization) EmployeeByToken(token string) *Employee {
	for i := range o.Employees {
		if o.Employees[i].Token == token {
			return &o.Employees[i]
		}
	}
	return nil
}

// OpenPunch returns the open punch record for the given worker, or nil.
// At most one such record exists per worker at any time.
func (o *Organization) OpenPunch(userID string) *PunchRecord {
	for i := range o.PunchRecords {
		if o.PunchRecords[i].UserID == userID && o.PunchRecords[i].EndAt == nil {
			return &o.PunchRecords[i]
		}
	}
	return nil
}

// AppData is the whole application aggregate. It is owned by the document
// store and treated as an opaque serializable value by the sync engine.
type AppData struct {
	AdminUsers    []AdminUser    `json:"adminUsers"`
	Organizations []Organization `json:"organizations"`
	CurrentOrgID  string         `json:"currentOrgId,omitempty"`
}

// OrgByID returns the organization with the given id, or nil.
func (d *AppData) OrgByID(id string) *Organization {
	for i := range d.Organizations {
		if d.Organizations[i].ID == id {
			return &d.Organizations[i]
		}
	}
	return nil
}

// StateKey is the slot under which the shared document is stored,
// both in the local cache and in the remote state service.
const StateKey = "primary"

// SchemaVersion is persisted alongside the remote document. It is stored
// and returned but not yet consulted for migration decisions.
const SchemaVersion = 1

// SyncStatus is the advisory state of the sync engine.
type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

// SyncState is transient process state, reset to idle at process start.
type SyncState struct {
	Status     SyncStatus
	LastSyncAt *time.Time
	LastError  string
}
