package noop

import (
	"context"
	"fmt"
	"log"

	"papertrail/internal/domain"
	"papertrail/internal/port"
)

type noopSender struct {
	frontendURL string
}

// NewNoopSender creates a no-op CustodyNotifier that logs notices to stdout.
func NewNoopSender(frontendURL string) port.CustodyNotifier {
	return &noopSender{frontendURL: frontendURL}
}

func (s *noopSender) SendCustodyNotice(_ context.Context, toEmail, toName string, notice domain.CustodyNotice) error {
	documentURL := fmt.Sprintf("%s/documents/%d", s.frontendURL, notice.DocumentID)
	log.Printf("[NOOP EMAIL] Custody %s for %s (%s): %s", notice.Event, toName, toEmail, documentURL)
	return nil
}
