package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"papertrail/internal/config"
	"papertrail/internal/csvexport"
	"papertrail/internal/domain"
	"papertrail/internal/metrics"
	"papertrail/internal/port"
	"papertrail/internal/xlsxexport"
)

const defaultHistoryPageSize = 20

// HolderRef names the party that should receive a copy. Only the id matching
// Type is read.
type HolderRef struct {
	Type     domain.CheckoutType
	UserID   int64
	AgentID  int64
	ClientID int64
}

// Holder validates the reference and returns the holder it points at.
func (r HolderRef) Holder() (domain.Holder, error) {
	kind, ok := r.Type.HolderKind()
	if !ok {
		return domain.Holder{}, domain.Validationf("checkout_type must be one of user, agent, client")
	}
	switch kind {
	case domain.HolderUser:
		if r.UserID <= 0 {
			return domain.Holder{}, domain.Validationf("user_id is required for a user hand-off")
		}
		return domain.UserHolder(r.UserID), nil
	case domain.HolderAgent:
		if r.AgentID <= 0 {
			return domain.Holder{}, domain.Validationf("agent_id is required for an agent hand-off")
		}
		return domain.AgentHolder(r.AgentID), nil
	default:
		if r.ClientID <= 0 {
			return domain.Holder{}, domain.Validationf("client_id is required for a client hand-off")
		}
		return domain.ClientHolder(r.ClientID), nil
	}
}

// CheckoutInput is the DTO for checking a physical copy out.
type CheckoutInput struct {
	DocumentID int64
	Holder     HolderRef
	// PerformedBy defaults to the document's uploader when zero.
	PerformedBy        int64
	Notes              string
	ExpectedReturnDate *time.Time
}

// CheckinInput is the DTO for a holder returning a copy.
type CheckinInput struct {
	DocumentID     int64
	RequestingUser int64
	Notes          string
}

// TransferInput is the DTO for handing a copy from one staff user to another party.
type TransferInput struct {
	DocumentID         int64
	FromUser           int64
	To                 HolderRef
	PerformedBy        int64
	Notes              string
	ExpectedReturnDate *time.Time
}

// RollbackInput is the DTO for an administrative rollback.
type RollbackInput struct {
	DocumentID int64
	AdminUser  int64
	Notes      string
}

// HistoryExport is a rendered transfer history file.
type HistoryExport struct {
	FileName    string
	ContentType string
	Data        []byte
}

// CustodyService defines the custody ledger contract.
type CustodyService interface {
	Checkout(ctx context.Context, input *CheckoutInput) (*domain.CustodyRecord, error)
	Checkin(ctx context.Context, input *CheckinInput) (*domain.CustodyRecord, error)
	Transfer(ctx context.Context, input *TransferInput) (*domain.CustodyRecord, error)
	Rollback(ctx context.Context, input *RollbackInput) (*domain.CustodyRecord, error)
	GetCustody(ctx context.Context, documentID int64) (*domain.CustodyRecord, error)
	GetHistory(ctx context.Context, documentID int64, offset, limit int) ([]domain.TransferHistoryEntry, int, error)
	GetHeldBy(ctx context.Context, userID int64) ([]domain.CustodyRecord, error)
	ListOverdue(ctx context.Context, asOf time.Time, offset, limit int) ([]domain.CustodyRecord, int, error)
	ExportHistory(ctx context.Context, documentID int64, format domain.ExportFormat) (*HistoryExport, error)
}

type custodyService struct {
	tx          port.CustodyTx
	custodyRepo port.CustodyRepository
	historyRepo port.TransferHistoryRepository
	registry    port.DocumentRegistry
	directory   port.Directory
	notifier    port.CustodyNotifier
	metrics     *metrics.Metrics
	cfg         config.CustodyConfig
	now         func() time.Time
}

// NewCustodyService creates a new CustodyService implementation. custodyRepo and
// historyRepo serve reads outside a transaction; notifier and m may be nil.
func NewCustodyService(
	tx port.CustodyTx,
	custodyRepo port.CustodyRepository,
	historyRepo port.TransferHistoryRepository,
	registry port.DocumentRegistry,
	directory port.Directory,
	notifier port.CustodyNotifier,
	m *metrics.Metrics,
	cfg config.CustodyConfig,
) CustodyService {
	return &custodyService{
		tx:          tx,
		custodyRepo: custodyRepo,
		historyRepo: historyRepo,
		registry:    registry,
		directory:   directory,
		notifier:    notifier,
		metrics:     m,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *custodyService) Checkout(ctx context.Context, input *CheckoutInput) (*domain.CustodyRecord, error) {
	start := time.Now()
	rec, err := s.checkout(ctx, input)
	s.metrics.ObserveTransition("checkout", start, err)
	return rec, err
}

func (s *custodyService) checkout(ctx context.Context, input *CheckoutInput) (*domain.CustodyRecord, error) {
	if input.DocumentID <= 0 {
		return nil, domain.Validationf("document_id is required")
	}
	holder, err := input.Holder.Holder()
	if err != nil {
		return nil, err
	}

	doc, err := s.document(ctx, input.DocumentID, true)
	if err != nil {
		return nil, err
	}
	clientName, err := s.clientName(ctx, holder)
	if err != nil {
		return nil, err
	}

	performer := input.PerformedBy
	if performer <= 0 {
		performer = doc.UploadedBy
	}
	now := s.now()

	var rec *domain.CustodyRecord
	err = s.tx.RunInTx(ctx, func(ctx context.Context, stores port.CustodyStores) error {
		if err := stores.Custody.EnsureRecord(ctx, input.DocumentID); err != nil {
			return err
		}
		var txErr error
		rec, txErr = stores.Custody.Checkout(ctx, port.CheckoutParams{
			DocumentID:         input.DocumentID,
			Holder:             holder,
			At:                 now,
			ExpectedReturnDate: input.ExpectedReturnDate,
			Notes:              input.Notes,
		})
		if txErr != nil {
			return txErr
		}

		entry := &domain.TransferHistoryEntry{
			DocumentID:         input.DocumentID,
			CustodyRecordID:    &rec.ID,
			TransferType:       domain.TransferTypeFor(holder.Kind),
			PerformedBy:        performer,
			TransferredAt:      now,
			Notes:              input.Notes,
			ExpectedReturnDate: input.ExpectedReturnDate,
		}
		entry.SetTo(holder, clientName)
		return s.appendEntry(ctx, stores, rec, entry)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("custodyService.Checkout: document %d checked out to %s by user %d", input.DocumentID, holder, performer)
	s.notify(ctx, holder, domain.CustodyNotice{
		DocumentID:         input.DocumentID,
		Event:              domain.CustodyEventCheckedOut,
		PerformedBy:        performer,
		ExpectedReturnDate: input.ExpectedReturnDate,
		Notes:              input.Notes,
	})
	return rec, nil
}

func (s *custodyService) Checkin(ctx context.Context, input *CheckinInput) (*domain.CustodyRecord, error) {
	start := time.Now()
	rec, err := s.checkin(ctx, input)
	s.metrics.ObserveTransition("checkin", start, err)
	return rec, err
}

func (s *custodyService) checkin(ctx context.Context, input *CheckinInput) (*domain.CustodyRecord, error) {
	if input.DocumentID <= 0 {
		return nil, domain.Validationf("document_id is required")
	}
	if input.RequestingUser <= 0 {
		return nil, domain.Validationf("requesting user is required")
	}
	if _, err := s.document(ctx, input.DocumentID, false); err != nil {
		return nil, err
	}

	holder := domain.UserHolder(input.RequestingUser)
	now := s.now()

	var rec *domain.CustodyRecord
	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores port.CustodyStores) error {
		var txErr error
		rec, txErr = stores.Custody.Checkin(ctx, input.DocumentID, holder, now)
		if errors.Is(txErr, domain.ErrHolderMismatch) {
			return s.explainCheckinMiss(ctx, stores, input.DocumentID)
		}
		if txErr != nil {
			return txErr
		}
		return s.closeOpenEntry(ctx, stores, rec, input, now)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("custodyService.Checkin: document %d returned by user %d", input.DocumentID, input.RequestingUser)
	return rec, nil
}

// explainCheckinMiss turns a failed conditional check-in into the precise error.
func (s *custodyService) explainCheckinMiss(ctx context.Context, stores port.CustodyStores, documentID int64) error {
	current, err := stores.Custody.GetByDocument(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNoActiveCustody
	}
	if err != nil {
		return err
	}
	switch {
	case !current.IsCheckedOut():
		return domain.ErrNoActiveCustody
	case !current.Holder.CanSelfReturn():
		return domain.ErrSelfCheckinNotAllowed
	default:
		return domain.ErrHolderMismatch
	}
}

// closeOpenEntry stamps the return on the entry that opened this custody.
// Rows written before entries were linked are found by value instead. A
// missing entry never blocks a physical return.
func (s *custodyService) closeOpenEntry(ctx context.Context, stores port.CustodyStores, rec *domain.CustodyRecord, input *CheckinInput, now time.Time) error {
	if rec.LastEntryID != nil {
		err := stores.History.MarkReturned(ctx, *rec.LastEntryID, now, input.Notes, input.RequestingUser)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}

	entry, err := stores.History.FindOpenForUser(ctx, input.DocumentID, input.RequestingUser)
	if errors.Is(err, domain.ErrNotFound) {
		log.Printf("custodyService.Checkin: no open history entry for document %d and user %d", input.DocumentID, input.RequestingUser)
		return nil
	}
	if err != nil {
		return err
	}
	err = stores.History.MarkReturned(ctx, entry.ID, now, input.Notes, input.RequestingUser)
	if errors.Is(err, domain.ErrNotFound) {
		log.Printf("custodyService.Checkin: history entry %d closed concurrently", entry.ID)
		return nil
	}
	return err
}

func (s *custodyService) Transfer(ctx context.Context, input *TransferInput) (*domain.CustodyRecord, error) {
	start := time.Now()
	rec, err := s.transfer(ctx, input)
	s.metrics.ObserveTransition("transfer", start, err)
	return rec, err
}

func (s *custodyService) transfer(ctx context.Context, input *TransferInput) (*domain.CustodyRecord, error) {
	if input.DocumentID <= 0 {
		return nil, domain.Validationf("document_id is required")
	}
	if input.FromUser <= 0 {
		return nil, domain.Validationf("from_user is required")
	}
	if input.PerformedBy <= 0 {
		return nil, domain.Validationf("performed_by is required")
	}
	from := domain.UserHolder(input.FromUser)
	to, err := input.To.Holder()
	if err != nil {
		return nil, err
	}
	if to == from {
		return nil, domain.Validationf("cannot transfer a document to its current holder")
	}
	if input.PerformedBy != input.FromUser {
		isAdmin, err := s.directory.IsAdmin(ctx, input.PerformedBy)
		if err != nil {
			return nil, persistence("checking admin role", err)
		}
		if !isAdmin {
			return nil, domain.ErrNotAdmin
		}
	}

	if _, err := s.document(ctx, input.DocumentID, true); err != nil {
		return nil, err
	}
	clientName, err := s.clientName(ctx, to)
	if err != nil {
		return nil, err
	}
	now := s.now()

	var rec *domain.CustodyRecord
	err = s.tx.RunInTx(ctx, func(ctx context.Context, stores port.CustodyStores) error {
		var txErr error
		rec, txErr = stores.Custody.Transfer(ctx, port.TransferParams{
			DocumentID:         input.DocumentID,
			From:               from,
			To:                 to,
			At:                 now,
			ExpectedReturnDate: input.ExpectedReturnDate,
			Notes:              input.Notes,
		})
		if errors.Is(txErr, domain.ErrHolderMismatch) {
			return s.explainTransferMiss(ctx, stores, input.DocumentID)
		}
		if txErr != nil {
			return txErr
		}

		// The entry that opened the previous custody stays open.
		entry := &domain.TransferHistoryEntry{
			DocumentID:         input.DocumentID,
			CustodyRecordID:    &rec.ID,
			TransferType:       domain.TransferTypeFor(to.Kind),
			PerformedBy:        input.PerformedBy,
			TransferredAt:      now,
			Notes:              input.Notes,
			ExpectedReturnDate: input.ExpectedReturnDate,
		}
		entry.SetFrom(from, "")
		entry.SetTo(to, clientName)
		return s.appendEntry(ctx, stores, rec, entry)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("custodyService.Transfer: document %d moved from %s to %s by user %d",
		input.DocumentID, from, to, input.PerformedBy)
	s.notify(ctx, to, domain.CustodyNotice{
		DocumentID:         input.DocumentID,
		Event:              domain.CustodyEventTransferred,
		PerformedBy:        input.PerformedBy,
		ExpectedReturnDate: input.ExpectedReturnDate,
		Notes:              input.Notes,
	})
	return rec, nil
}

func (s *custodyService) explainTransferMiss(ctx context.Context, stores port.CustodyStores, documentID int64) error {
	current, err := stores.Custody.GetByDocument(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNoActiveCustody
	}
	if err != nil {
		return err
	}
	if !current.IsCheckedOut() {
		return domain.ErrNoActiveCustody
	}
	return domain.ErrHolderMismatch
}

func (s *custodyService) Rollback(ctx context.Context, input *RollbackInput) (*domain.CustodyRecord, error) {
	start := time.Now()
	rec, err := s.rollback(ctx, input)
	s.metrics.ObserveTransition("rollback", start, err)
	return rec, err
}

func (s *custodyService) rollback(ctx context.Context, input *RollbackInput) (*domain.CustodyRecord, error) {
	if input.DocumentID <= 0 {
		return nil, domain.Validationf("document_id is required")
	}
	if input.AdminUser <= 0 {
		return nil, domain.Validationf("admin user is required")
	}

	isAdmin, err := s.directory.IsAdmin(ctx, input.AdminUser)
	if err != nil {
		return nil, persistence("checking admin role", err)
	}
	if !isAdmin {
		return nil, domain.ErrNotAdmin
	}
	if _, err := s.document(ctx, input.DocumentID, false); err != nil {
		return nil, err
	}

	mode := s.cfg.RollbackMode
	if mode == "" {
		mode = domain.RollbackDelete
	}
	now := s.now()

	var rec *domain.CustodyRecord
	err = s.tx.RunInTx(ctx, func(ctx context.Context, stores port.CustodyStores) error {
		current, txErr := stores.Custody.LockByDocument(ctx, input.DocumentID)
		if errors.Is(txErr, domain.ErrNotFound) {
			return domain.ErrNoActiveCustody
		}
		if txErr != nil {
			return txErr
		}
		if !current.IsCheckedOut() {
			return domain.ErrNoActiveCustody
		}

		if mode == domain.RollbackCompensate {
			txErr = s.compensate(ctx, stores, current, input, now)
		} else {
			txErr = s.deleteLatest(ctx, stores, current, now)
		}
		if txErr != nil {
			return txErr
		}

		rec, txErr = stores.Custody.GetByDocument(ctx, input.DocumentID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	log.Printf("custodyService.Rollback: document %d reset by admin %d (mode %s)", input.DocumentID, input.AdminUser, mode)
	return rec, nil
}

// deleteLatest resets the ledger row and removes the newest history entry,
// whichever transition it recorded.
func (s *custodyService) deleteLatest(ctx context.Context, stores port.CustodyStores, current *domain.CustodyRecord, now time.Time) error {
	if err := stores.Custody.Reset(ctx, current.ID, current.Holder, now); err != nil {
		return err
	}
	latest, err := stores.History.LatestForDocument(ctx, current.DocumentID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Printf("custodyService.Rollback: document %d has no history entry to remove", current.DocumentID)
		return nil
	}
	if err != nil {
		return err
	}
	return stores.History.Delete(ctx, latest.ID)
}

// compensate closes the current entry and records the rollback as a new entry.
func (s *custodyService) compensate(ctx context.Context, stores port.CustodyStores, current *domain.CustodyRecord, input *RollbackInput, now time.Time) error {
	open, err := s.currentEntry(ctx, stores, current)
	if err != nil {
		return err
	}

	clientName := ""
	if open != nil && open.ToClientName != nil {
		clientName = *open.ToClientName
	}
	if current.Holder.Kind == domain.HolderClient && clientName == "" {
		clientName = fmt.Sprintf("client #%d", current.Holder.ID)
	}

	if open != nil && open.IsOpen() {
		err := stores.History.CloseEntry(ctx, open.ID, now, input.Notes)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	if err := stores.Custody.Reset(ctx, current.ID, current.Holder, now); err != nil {
		return err
	}

	entry := &domain.TransferHistoryEntry{
		DocumentID:      current.DocumentID,
		CustodyRecordID: &current.ID,
		TransferType:    domain.TransferRolledBack,
		PerformedBy:     input.AdminUser,
		TransferredAt:   now,
		Notes:           input.Notes,
	}
	entry.SetFrom(current.Holder, clientName)
	return s.appendEntry(ctx, stores, current, entry)
}

// currentEntry returns the entry the ledger row points at, falling back to the
// newest entry for the document. It returns nil when the document has none.
func (s *custodyService) currentEntry(ctx context.Context, stores port.CustodyStores, current *domain.CustodyRecord) (*domain.TransferHistoryEntry, error) {
	if current.LastEntryID != nil {
		entry, err := stores.History.GetByID(ctx, *current.LastEntryID)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	entry, err := stores.History.LatestForDocument(ctx, current.DocumentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return entry, err
}

// appendEntry writes entry and points the ledger row at it.
func (s *custodyService) appendEntry(ctx context.Context, stores port.CustodyStores, rec *domain.CustodyRecord, entry *domain.TransferHistoryEntry) error {
	if err := stores.History.Create(ctx, entry); err != nil {
		return err
	}
	if err := stores.Custody.SetLastEntry(ctx, rec.ID, &entry.ID); err != nil {
		return err
	}
	rec.LastEntryID = &entry.ID
	return nil
}

func (s *custodyService) GetCustody(ctx context.Context, documentID int64) (*domain.CustodyRecord, error) {
	if documentID <= 0 {
		return nil, domain.Validationf("document_id is required")
	}
	if _, err := s.document(ctx, documentID, false); err != nil {
		return nil, err
	}
	rec, err := s.custodyRepo.GetByDocument(ctx, documentID)
	if err != nil {
		return nil, persistence("loading custody record", err)
	}
	return rec, nil
}

func (s *custodyService) GetHistory(ctx context.Context, documentID int64, offset, limit int) ([]domain.TransferHistoryEntry, int, error) {
	if documentID <= 0 {
		return nil, 0, domain.Validationf("document_id is required")
	}
	if _, err := s.document(ctx, documentID, false); err != nil {
		return nil, 0, err
	}
	offset, limit = s.page(offset, limit)
	entries, total, err := s.historyRepo.ListByDocument(ctx, documentID, offset, limit)
	if err != nil {
		return nil, 0, persistence("listing history", err)
	}
	return entries, total, nil
}

func (s *custodyService) GetHeldBy(ctx context.Context, userID int64) ([]domain.CustodyRecord, error) {
	if userID <= 0 {
		return nil, domain.Validationf("user_id is required")
	}
	records, err := s.custodyRepo.ListHeldBy(ctx, domain.UserHolder(userID))
	if err != nil {
		return nil, persistence("listing held documents", err)
	}
	return records, nil
}

func (s *custodyService) ListOverdue(ctx context.Context, asOf time.Time, offset, limit int) ([]domain.CustodyRecord, int, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	offset, limit = s.page(offset, limit)
	records, total, err := s.custodyRepo.ListOverdue(ctx, asOf, offset, limit)
	if err != nil {
		return nil, 0, persistence("listing overdue documents", err)
	}
	return records, total, nil
}

func (s *custodyService) ExportHistory(ctx context.Context, documentID int64, format domain.ExportFormat) (*HistoryExport, error) {
	if documentID <= 0 {
		return nil, domain.Validationf("document_id is required")
	}
	if format == "" {
		format = domain.ExportFormatCSV
	}
	if format != domain.ExportFormatCSV && format != domain.ExportFormatXLSX {
		return nil, domain.Validationf("format must be csv or xlsx")
	}
	if _, err := s.document(ctx, documentID, false); err != nil {
		return nil, err
	}

	entries, err := s.historyRepo.ListAllByDocument(ctx, documentID)
	if err != nil {
		return nil, persistence("loading history for export", err)
	}

	var buf bytes.Buffer
	out := &HistoryExport{FileName: csvexport.BuildFilename(documentID, string(format), s.now())}
	switch format {
	case domain.ExportFormatXLSX:
		out.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		if err := xlsxexport.WriteHistory(&buf, entries); err != nil {
			return nil, fmt.Errorf("custodyService.ExportHistory: %w", err)
		}
	default:
		out.ContentType = "text/csv; charset=utf-8"
		buf.Write(csvexport.BOM)
		w := csvexport.NewWriter(&buf)
		if err := w.WriteHeader(); err != nil {
			return nil, fmt.Errorf("custodyService.ExportHistory: %w", err)
		}
		if err := w.WriteEntries(entries); err != nil {
			return nil, fmt.Errorf("custodyService.ExportHistory: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("custodyService.ExportHistory: %w", err)
		}
	}
	out.Data = buf.Bytes()
	return out, nil
}

// document loads a registry document. Inactive documents are rejected when
// requireActive is set.
func (s *custodyService) document(ctx context.Context, documentID int64, requireActive bool) (*domain.Document, error) {
	doc, err := s.registry.GetDocument(ctx, documentID)
	if err != nil {
		return nil, persistence("loading document", err)
	}
	if requireActive && !doc.IsActive {
		return nil, domain.ErrDocumentInactive
	}
	return doc, nil
}

// clientName resolves the display name recorded for client holders.
func (s *custodyService) clientName(ctx context.Context, h domain.Holder) (string, error) {
	if h.Kind != domain.HolderClient {
		return "", nil
	}
	name, err := s.directory.ResolveClientName(ctx, h.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.Validationf("client %d does not exist", h.ID)
	}
	if err != nil {
		return "", persistence("resolving client", err)
	}
	return name, nil
}

func (s *custodyService) page(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultHistoryPageSize
	}
	if s.cfg.MaxPageSize > 0 && limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	return offset, limit
}

// notify emails a staff user who has just received a copy. Delivery failures
// are logged and counted; the custody change is already committed.
func (s *custodyService) notify(ctx context.Context, holder domain.Holder, notice domain.CustodyNotice) {
	if s.notifier == nil || holder.Kind != domain.HolderUser || holder.ID == notice.PerformedBy {
		return
	}
	user, err := s.directory.GetUser(ctx, holder.ID)
	if err != nil {
		log.Printf("custodyService.notify: failed to look up user %d: %v", holder.ID, err)
		s.metrics.IncrementNoticeFailed()
		return
	}
	if !user.IsActive || user.Email == "" {
		return
	}
	if err := s.notifier.SendCustodyNotice(ctx, user.Email, user.FullName, notice); err != nil {
		log.Printf("custodyService.notify: failed to send notice for document %d to user %d: %v", notice.DocumentID, holder.ID, err)
		s.metrics.IncrementNoticeFailed()
	}
}

// persistence tags errors from collaborators that are not already categorized.
func persistence(op string, err error) error {
	if domain.IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}
