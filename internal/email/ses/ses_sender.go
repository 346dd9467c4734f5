package ses

import (
	"context"
	"fmt"
	"html"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"papertrail/internal/domain"
	"papertrail/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed CustodyNotifier.
func NewSESSender(region, fromAddress, fromName, frontendURL string) (port.CustodyNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendCustodyNotice(ctx context.Context, toEmail, toName string, notice domain.CustodyNotice) error {
	documentURL := fmt.Sprintf("%s/documents/%d", s.frontendURL, notice.DocumentID)

	subject := noticeSubject(notice)
	htmlBody := buildCustodyNoticeHTML(toName, documentURL, notice)
	textBody := buildCustodyNoticeText(toName, documentURL, notice)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func noticeSubject(n domain.CustodyNotice) string {
	if n.Event == domain.CustodyEventTransferred {
		return fmt.Sprintf("Document #%d has been transferred to you", n.DocumentID)
	}
	return fmt.Sprintf("Document #%d has been checked out to you", n.DocumentID)
}

func returnLine(n domain.CustodyNotice) string {
	if n.ExpectedReturnDate == nil {
		return "No return date was set."
	}
	return "Please return it by " + n.ExpectedReturnDate.Format(time.DateOnly) + "."
}

func buildCustodyNoticeText(name, documentURL string, n domain.CustodyNotice) string {
	text := fmt.Sprintf("Hi %s,\n\nThe physical copy of document #%d is now in your custody (handed over by user #%d).\n%s\n",
		name, n.DocumentID, n.PerformedBy, returnLine(n))
	if n.Notes != "" {
		text += "\nNotes: " + n.Notes + "\n"
	}
	return text + fmt.Sprintf("\nView the document: %s\n\nPapertrail", documentURL)
}

func buildCustodyNoticeHTML(name, documentURL string, n domain.CustodyNotice) string {
	notes := ""
	if n.Notes != "" {
		notes = fmt.Sprintf(`<p style="color: #555;"><strong>Notes:</strong> %s</p>`, html.EscapeString(n.Notes))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">%s</h2>
  <p>Hi %s,</p>
  <p>The physical copy of document #%d is now in your custody (handed over by user #%d).</p>
  <p>%s</p>
  %s
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Document</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Papertrail - Vehicle Document Custody</p>
</body>
</html>`, html.EscapeString(noticeSubject(n)), html.EscapeString(name), n.DocumentID, n.PerformedBy,
		returnLine(n), notes, documentURL)
}
