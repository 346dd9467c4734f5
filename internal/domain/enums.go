package domain

// UserRole defines the role hierarchy for staff accounts.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// CustodyStatus is the lifecycle state of a document's physical copy.
type CustodyStatus string

const (
	CustodyStatusAvailable  CustodyStatus = "available"
	CustodyStatusCheckedOut CustodyStatus = "checked_out"
)

// HolderKind tags which party holds a physical copy.
type HolderKind string

const (
	HolderNone   HolderKind = ""
	HolderUser   HolderKind = "user"
	HolderAgent  HolderKind = "agent"
	HolderClient HolderKind = "client"
)

// CheckoutType selects the kind of holder a checkout or transfer targets.
type CheckoutType string

const (
	CheckoutTypeUser   CheckoutType = "user"
	CheckoutTypeAgent  CheckoutType = "agent"
	CheckoutTypeClient CheckoutType = "client"
)

// HolderKind maps a checkout type to the holder kind it produces.
func (t CheckoutType) HolderKind() (HolderKind, bool) {
	switch t {
	case CheckoutTypeUser:
		return HolderUser, true
	case CheckoutTypeAgent:
		return HolderAgent, true
	case CheckoutTypeClient:
		return HolderClient, true
	default:
		return HolderNone, false
	}
}

// TransferType classifies a transfer history entry.
type TransferType string

const (
	TransferUserToUser   TransferType = "user_to_user"
	TransferUserToAgent  TransferType = "user_to_agent"
	TransferUserToClient TransferType = "user_to_client"
	TransferRolledBack   TransferType = "rolled_back"
)

// TransferTypeFor returns the history type recorded when custody moves to a holder of kind k.
func TransferTypeFor(k HolderKind) TransferType {
	switch k {
	case HolderAgent:
		return TransferUserToAgent
	case HolderClient:
		return TransferUserToClient
	default:
		return TransferUserToUser
	}
}

// RollbackMode selects how an administrative rollback treats the history.
type RollbackMode string

const (
	// RollbackDelete removes the most recent history entry.
	RollbackDelete RollbackMode = "delete"
	// RollbackCompensate keeps history intact and appends a rolled_back entry.
	RollbackCompensate RollbackMode = "compensate"
)

// ExportFormat is the file format of a history export.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)
