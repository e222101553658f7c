// File: tripbot/services/notification/twilio.go
package notification

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioSender sends WhatsApp messages through the Twilio Messages API.
// The userID is the recipient's WhatsApp address (e.g. "whatsapp:+919...").
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	client     *http.Client
	logger     *zap.Logger
}

func NewTwilioSender(accountSID, authToken, from string, logger *zap.Logger) *TwilioSender {
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (s *TwilioSender) Send(ctx context.Context, userID, text string) error {
	form := url.Values{}
	form.Set("From", s.from)
	form.Set("To", userID)
	form.Set("Body", text)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioAPIBase, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("twilio send returned status %d", resp.StatusCode)
	}

	s.logger.Debug("whatsapp message sent", zap.String("to", userID))
	return nil
}
