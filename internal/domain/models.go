package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Document is the registry view of a vehicle file record. The custody core
// only reads it.
type Document struct {
	ID         int64 `db:"id" json:"id"`
	IsActive   bool  `db:"is_active" json:"is_active"`
	UploadedBy int64 `db:"uploaded_by" json:"uploaded_by"`
}

// User is a staff account resolved through the directory.
type User struct {
	ID       int64    `db:"id" json:"id"`
	FullName string   `db:"full_name" json:"full_name"`
	Email    string   `db:"email" json:"email"`
	Role     UserRole `db:"role" json:"role"`
	IsActive bool     `db:"is_active" json:"is_active"`
}

// Holder identifies the party in possession of a physical copy.
// The zero value means nobody holds it.
type Holder struct {
	Kind HolderKind `json:"kind"`
	ID   int64      `json:"id"`
}

// UserHolder returns a holder for staff user id.
func UserHolder(id int64) Holder { return Holder{Kind: HolderUser, ID: id} }

// AgentHolder returns a holder for customs-clearance agent id.
func AgentHolder(id int64) Holder { return Holder{Kind: HolderAgent, ID: id} }

// ClientHolder returns a holder for client id.
func ClientHolder(id int64) Holder { return Holder{Kind: HolderClient, ID: id} }

// IsNone reports whether no party holds the copy.
func (h Holder) IsNone() bool { return h.Kind == HolderNone }

// CanSelfReturn reports whether the holder may check the copy back in themselves.
// Only staff users can; agents and clients return copies through a transfer
// or an administrative rollback.
func (h Holder) CanSelfReturn() bool { return h.Kind == HolderUser }

func (h Holder) String() string {
	if h.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%s:%d", h.Kind, h.ID)
}

// MarshalJSON encodes an empty holder as null.
func (h Holder) MarshalJSON() ([]byte, error) {
	if h.IsNone() {
		return []byte("null"), nil
	}
	type plain Holder
	return json.Marshal(plain(h))
}

// UnmarshalJSON accepts null as the empty holder.
func (h *Holder) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*h = Holder{}
		return nil
	}
	type plain Holder
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*h = Holder(p)
	return nil
}

// CustodyRecord is the ledger row describing who holds a document's physical copy.
// There is exactly one per document.
type CustodyRecord struct {
	ID                 int64         `json:"id"`
	DocumentID         int64         `json:"document_id"`
	Holder             Holder        `json:"holder"`
	Status             CustodyStatus `json:"status"`
	PreviousHolder     Holder        `json:"previous_holder"`
	CheckedOutAt       *time.Time    `json:"checked_out_at"`
	CheckedInAt        *time.Time    `json:"checked_in_at"`
	TransferredAt      *time.Time    `json:"transferred_at"`
	ExpectedReturnDate *time.Time    `json:"expected_return_date"`
	Notes              string        `json:"notes"`
	LastEntryID        *int64        `json:"last_entry_id"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// IsCheckedOut reports whether the copy is currently out.
func (r *CustodyRecord) IsCheckedOut() bool {
	return r.Status == CustodyStatusCheckedOut
}

// TransferHistoryEntry is one hand-off in the custody audit trail.
type TransferHistoryEntry struct {
	ID                 int64        `db:"id" json:"id"`
	DocumentID         int64        `db:"document_id" json:"document_id"`
	CustodyRecordID    *int64       `db:"custody_record_id" json:"custody_record_id"`
	FromUser           *int64       `db:"from_user" json:"from_user"`
	FromAgent          *int64       `db:"from_agent" json:"from_agent"`
	FromClientName     *string      `db:"from_client_name" json:"from_client_name"`
	ToUser             *int64       `db:"to_user" json:"to_user"`
	ToAgent            *int64       `db:"to_agent" json:"to_agent"`
	ToClientID         *int64       `db:"to_client_id" json:"to_client_id"`
	ToClientName       *string      `db:"to_client_name" json:"to_client_name"`
	TransferType       TransferType `db:"transfer_type" json:"transfer_type"`
	PerformedBy        int64        `db:"performed_by" json:"performed_by"`
	TransferredAt      time.Time    `db:"transferred_at" json:"transferred_at"`
	ReturnedAt         *time.Time   `db:"returned_at" json:"returned_at"`
	Notes              string       `db:"notes" json:"notes"`
	ReturnNotes        string       `db:"return_notes" json:"return_notes"`
	ExpectedReturnDate *time.Time   `db:"expected_return_date" json:"expected_return_date"`
}

// IsOpen reports whether the hand-off has not been closed by a return.
func (e *TransferHistoryEntry) IsOpen() bool {
	return e.ReturnedAt == nil
}

// SetTo fills the to_* columns from a holder. clientName is only used for client holders.
func (e *TransferHistoryEntry) SetTo(h Holder, clientName string) {
	id := h.ID
	switch h.Kind {
	case HolderUser:
		e.ToUser = &id
	case HolderAgent:
		e.ToAgent = &id
	case HolderClient:
		e.ToClientID = &id
		if clientName != "" {
			e.ToClientName = &clientName
		}
	}
}

// SetFrom fills the from_* columns from a holder.
func (e *TransferHistoryEntry) SetFrom(h Holder, clientName string) {
	id := h.ID
	switch h.Kind {
	case HolderUser:
		e.FromUser = &id
	case HolderAgent:
		e.FromAgent = &id
	case HolderClient:
		if clientName != "" {
			e.FromClientName = &clientName
		}
	}
}

// CustodyEvent names the transition a custody notice reports.
type CustodyEvent string

const (
	CustodyEventCheckedOut  CustodyEvent = "checked_out"
	CustodyEventTransferred CustodyEvent = "transferred"
)

// CustodyNotice is sent to a staff user who has just received a physical copy.
type CustodyNotice struct {
	DocumentID         int64
	Event              CustodyEvent
	PerformedBy        int64
	ExpectedReturnDate *time.Time
	Notes              string
}
