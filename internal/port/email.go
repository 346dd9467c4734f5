package port

import (
	"context"

	"papertrail/internal/domain"
)

// CustodyNotifier tells a staff user that a physical copy is now in their hands.
type CustodyNotifier interface {
	SendCustodyNotice(ctx context.Context, toEmail, toName string, notice domain.CustodyNotice) error
}
