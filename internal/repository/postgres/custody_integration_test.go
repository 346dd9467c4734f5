//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"papertrail/internal/config"
	"papertrail/internal/domain"
	"papertrail/internal/metrics"
	"papertrail/internal/repository/postgres"
	"papertrail/internal/service"
)

const (
	adminID  int64 = 1
	aliceID  int64 = 2
	bobID    int64 = 3
	clientID int64 = 1
)

type CustodySuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *sqlx.DB
	docID     int64
}

func TestCustodySuite(t *testing.T) {
	suite.Run(t, new(CustodySuite))
}

func (s *CustodySuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("papertrail_test"),
		tcpostgres.WithUsername("papertrail"),
		tcpostgres.WithPassword("papertrail"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err, "failed to start postgres container")
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	_, file, _, ok := runtime.Caller(0)
	s.Require().True(ok)
	migrations := filepath.Join(filepath.Dir(file), "..", "..", "..", "db", "migrations")
	m, err := migrate.New("file://"+migrations, dsn)
	s.Require().NoError(err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		s.Require().NoError(err)
	}
	srcErr, dbErr := m.Close()
	s.Require().NoError(srcErr)
	s.Require().NoError(dbErr)

	s.db, err = sqlx.Connect("pgx", dsn)
	s.Require().NoError(err)
}

func (s *CustodySuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *CustodySuite) SetupTest() {
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx,
		`TRUNCATE transfer_history, custody_records, documents, clients, users RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)

	_, err = s.db.ExecContext(ctx, `INSERT INTO users (full_name, email, role) VALUES
		('Registry Admin', 'admin@firm.test', 'admin'),
		('Alice Clerk', 'alice@firm.test', 'member'),
		('Bob Clerk', 'bob@firm.test', 'member')`)
	s.Require().NoError(err)
	_, err = s.db.ExecContext(ctx, `INSERT INTO clients (name) VALUES ('Acme Notary')`)
	s.Require().NoError(err)
	s.Require().NoError(s.db.GetContext(ctx, &s.docID,
		`INSERT INTO documents (file_name, uploaded_by) VALUES ('title-deed.pdf', $1) RETURNING id`, adminID))
}

func (s *CustodySuite) newService(mode domain.RollbackMode) service.CustodyService {
	cfg := config.CustodyConfig{TxTimeout: 10 * time.Second, RollbackMode: mode, MaxPageSize: 100}
	return service.NewCustodyService(
		postgres.NewCustodyTx(s.db, cfg.TxTimeout),
		postgres.NewCustodyRepo(s.db),
		postgres.NewTransferHistoryRepo(s.db),
		postgres.NewDocumentRegistry(s.db),
		postgres.NewDirectoryRepo(s.db),
		nil,
		metrics.New(prometheus.NewRegistry()),
		cfg,
	)
}

func (s *CustodySuite) checkoutTo(svc service.CustodyService, ref service.HolderRef) *domain.CustodyRecord {
	rec, err := svc.Checkout(context.Background(), &service.CheckoutInput{
		DocumentID:  s.docID,
		Holder:      ref,
		PerformedBy: adminID,
		Notes:       "original for signing",
	})
	s.Require().NoError(err)
	return rec
}

func (s *CustodySuite) history(svc service.CustodyService) []domain.TransferHistoryEntry {
	entries, total, err := svc.GetHistory(context.Background(), s.docID, 0, 50)
	s.Require().NoError(err)
	s.Require().Len(entries, total)
	return entries
}

func (s *CustodySuite) TestConcurrentCheckoutsHaveOneWinner() {
	svc := s.newService(domain.RollbackDelete)
	const workers = 50

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			holder := aliceID
			if i%2 == 1 {
				holder = bobID
			}
			_, err := svc.Checkout(context.Background(), &service.CheckoutInput{
				DocumentID:  s.docID,
				Holder:      service.HolderRef{Type: domain.CheckoutTypeUser, UserID: holder},
				PerformedBy: adminID,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrAlreadyCheckedOut):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	s.Empty(others)
	s.Equal(1, successes)
	s.Equal(workers-1, conflicts)
	s.Len(s.history(svc), 1)

	rec, err := svc.GetCustody(context.Background(), s.docID)
	s.Require().NoError(err)
	s.Equal(domain.CustodyStatusCheckedOut, rec.Status)
}

func (s *CustodySuite) TestCheckoutCheckinRoundTripClosesEntry() {
	ctx := context.Background()
	svc := s.newService(domain.RollbackDelete)

	out := s.checkoutTo(svc, service.HolderRef{Type: domain.CheckoutTypeUser, UserID: aliceID})
	s.Equal(domain.UserHolder(aliceID), out.Holder)
	s.Require().NotNil(out.LastEntryID)

	_, err := svc.Checkin(ctx, &service.CheckinInput{DocumentID: s.docID, RequestingUser: bobID})
	s.ErrorIs(err, domain.ErrHolderMismatch)

	rec, err := svc.Checkin(ctx, &service.CheckinInput{DocumentID: s.docID, RequestingUser: aliceID, Notes: "back in the safe"})
	s.Require().NoError(err)
	s.Equal(domain.CustodyStatusAvailable, rec.Status)
	s.True(rec.Holder.IsNone())
	s.Equal(domain.UserHolder(aliceID), rec.PreviousHolder)
	s.NotNil(rec.CheckedInAt)

	entries := s.history(svc)
	s.Require().Len(entries, 1)
	s.Equal(*out.LastEntryID, entries[0].ID)
	s.NotNil(entries[0].ReturnedAt)
	s.Equal("back in the safe", entries[0].ReturnNotes)
	s.Equal(aliceID, entries[0].PerformedBy)

	_, err = svc.Checkin(ctx, &service.CheckinInput{DocumentID: s.docID, RequestingUser: aliceID})
	s.ErrorIs(err, domain.ErrNoActiveCustody)
}

func (s *CustodySuite) TestTransferMovesCustody() {
	ctx := context.Background()
	svc := s.newService(domain.RollbackDelete)
	s.checkoutTo(svc, service.HolderRef{Type: domain.CheckoutTypeUser, UserID: aliceID})

	rec, err := svc.Transfer(ctx, &service.TransferInput{
		DocumentID:  s.docID,
		FromUser:    aliceID,
		To:          service.HolderRef{Type: domain.CheckoutTypeUser, UserID: bobID},
		PerformedBy: aliceID,
	})
	s.Require().NoError(err)
	s.Equal(domain.UserHolder(bobID), rec.Holder)
	s.Equal(domain.UserHolder(aliceID), rec.PreviousHolder)

	held, err := svc.GetHeldBy(ctx, bobID)
	s.Require().NoError(err)
	s.Require().Len(held, 1)
	s.Equal(s.docID, held[0].DocumentID)

	held, err = svc.GetHeldBy(ctx, aliceID)
	s.Require().NoError(err)
	s.Empty(held)

	entries := s.history(svc)
	s.Require().Len(entries, 2)
	s.Equal(domain.TransferUserToUser, entries[0].TransferType)
	s.Require().NotNil(entries[0].FromUser)
	s.Equal(aliceID, *entries[0].FromUser)
	s.Nil(entries[1].ReturnedAt)

	_, err = svc.Transfer(ctx, &service.TransferInput{
		DocumentID:  s.docID,
		FromUser:    aliceID,
		To:          service.HolderRef{Type: domain.CheckoutTypeAgent, AgentID: 4},
		PerformedBy: aliceID,
	})
	s.ErrorIs(err, domain.ErrHolderMismatch)
}

func (s *CustodySuite) TestRollbackDeletesLatestEntry() {
	ctx := context.Background()
	svc := s.newService(domain.RollbackDelete)
	s.checkoutTo(svc, service.HolderRef{Type: domain.CheckoutTypeUser, UserID: aliceID})
	_, err := svc.Transfer(ctx, &service.TransferInput{
		DocumentID:  s.docID,
		FromUser:    aliceID,
		To:          service.HolderRef{Type: domain.CheckoutTypeClient, ClientID: clientID},
		PerformedBy: aliceID,
	})
	s.Require().NoError(err)

	_, err = svc.Rollback(ctx, &service.RollbackInput{DocumentID: s.docID, AdminUser: aliceID})
	s.ErrorIs(err, domain.ErrNotAdmin)
	s.Len(s.history(svc), 2)

	rec, err := svc.Rollback(ctx, &service.RollbackInput{DocumentID: s.docID, AdminUser: adminID})
	s.Require().NoError(err)
	s.Equal(domain.CustodyStatusAvailable, rec.Status)
	s.True(rec.Holder.IsNone())
	s.Nil(rec.LastEntryID)

	entries := s.history(svc)
	s.Require().Len(entries, 1)
	s.Equal(domain.TransferUserToUser, entries[0].TransferType)

	_, err = svc.Rollback(ctx, &service.RollbackInput{DocumentID: s.docID, AdminUser: adminID})
	s.ErrorIs(err, domain.ErrNoActiveCustody)
}

func (s *CustodySuite) TestCompensatingRollbackAppendsEntry() {
	ctx := context.Background()
	svc := s.newService(domain.RollbackCompensate)
	_, err := svc.Checkout(ctx, &service.CheckoutInput{
		DocumentID:  s.docID,
		Holder:      service.HolderRef{Type: domain.CheckoutTypeClient, ClientID: clientID},
		PerformedBy: aliceID,
	})
	s.Require().NoError(err)

	rec, err := svc.Rollback(ctx, &service.RollbackInput{DocumentID: s.docID, AdminUser: adminID, Notes: "wrong client"})
	s.Require().NoError(err)
	s.Equal(domain.CustodyStatusAvailable, rec.Status)

	entries := s.history(svc)
	s.Require().Len(entries, 2)
	rolledBack, original := entries[0], entries[1]
	s.Equal(domain.TransferRolledBack, rolledBack.TransferType)
	s.Equal(adminID, rolledBack.PerformedBy)
	s.Require().NotNil(rolledBack.FromClientName)
	s.Equal("Acme Notary", *rolledBack.FromClientName)
	s.Require().NotNil(rec.LastEntryID)
	s.Equal(rolledBack.ID, *rec.LastEntryID)

	s.Equal(domain.TransferUserToClient, original.TransferType)
	s.NotNil(original.ReturnedAt)
	s.Equal("wrong client", original.ReturnNotes)
	s.Equal(aliceID, original.PerformedBy)
}

func (s *CustodySuite) TestOverdueAndExport() {
	ctx := context.Background()
	svc := s.newService(domain.RollbackDelete)
	due := time.Now().UTC().Add(-48 * time.Hour)
	_, err := svc.Checkout(ctx, &service.CheckoutInput{
		DocumentID:         s.docID,
		Holder:             service.HolderRef{Type: domain.CheckoutTypeAgent, AgentID: 9},
		PerformedBy:        adminID,
		ExpectedReturnDate: &due,
	})
	s.Require().NoError(err)

	overdue, total, err := svc.ListOverdue(ctx, time.Time{}, 0, 10)
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(overdue, 1)
	s.Equal(domain.AgentHolder(9), overdue[0].Holder)

	out, err := svc.ExportHistory(ctx, s.docID, domain.ExportFormatCSV)
	s.Require().NoError(err)
	s.Contains(string(out.Data), "agent:9")
}

func (s *CustodySuite) TestBackfillLinksLegacyRows() {
	ctx := context.Background()
	svc := s.newService(domain.RollbackDelete)
	s.checkoutTo(svc, service.HolderRef{Type: domain.CheckoutTypeUser, UserID: aliceID})

	// Simulate rows written before entries were linked.
	_, err := s.db.ExecContext(ctx, `UPDATE custody_records SET last_entry_id = NULL`)
	s.Require().NoError(err)
	_, err = s.db.ExecContext(ctx, `UPDATE transfer_history SET custody_record_id = NULL`)
	s.Require().NoError(err)

	stats, err := postgres.BackfillLinks(ctx, s.db, 1)
	s.Require().NoError(err)
	s.Equal(int64(1), stats.EntriesLinked)
	s.Equal(int64(1), stats.RecordsLinked)
	s.Zero(stats.RecordsNoMatch)

	rec, err := svc.GetCustody(ctx, s.docID)
	s.Require().NoError(err)
	s.Require().NotNil(rec.LastEntryID)
	entries := s.history(svc)
	s.Equal(entries[0].ID, *rec.LastEntryID)
	s.Require().NotNil(entries[0].CustodyRecordID)
	s.Equal(rec.ID, *entries[0].CustodyRecordID)

	stats, err = postgres.BackfillLinks(ctx, s.db, 1)
	s.Require().NoError(err)
	s.Zero(stats.EntriesLinked)
	s.Zero(stats.RecordsLinked)
}
