package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"

	"dineflow/internal/xpkg/config"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/logger"

	"github.com/google/uuid"
)

// Notifier looks up the customer's contact details at the user service and
// sends an "order ready" mail. Nothing here is retried.
type Notifier struct {
	usersURL string
	smtp     *config.SMTP
	http     *http.Client
	mylog    logger.Logger
}

func New(usersURL string, smtpCfg *config.SMTP, mylog logger.Logger) *Notifier {
	return &Notifier{
		usersURL: usersURL,
		smtp:     smtpCfg,
		http:     &http.Client{Timeout: 5 * time.Second},
		mylog:    mylog,
	}
}

type userDetails struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (n *Notifier) NotifyOrderReady(ctx context.Context, userID, orderID uuid.UUID) error {
	user, err := n.lookupUser(ctx, userID)
	if err != nil {
		return err
	}
	return n.send(user, orderID)
}

func (n *Notifier) lookupUser(ctx context.Context, userID uuid.UUID) (userDetails, error) {
	url := fmt.Sprintf("%s/users/%s", n.usersURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return userDetails{}, fmt.Errorf("build user request: %w", err)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		return userDetails{}, errs.NewExternalServiceError("user-service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return userDetails{}, errs.NewExternalServiceError("user-service",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var user userDetails
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return userDetails{}, errs.NewExternalServiceError("user-service", err)
	}
	return user, nil
}

func (n *Notifier) send(user userDetails, orderID uuid.UUID) error {
	if n.smtp == nil {
		n.mylog.Action("notify_skipped").Debug("SMTP not configured", "order_id", orderID)
		return nil
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your order is ready\r\n\r\nHi %s, your order %s is ready for pickup.\r\n",
		n.smtp.From, user.Email, user.Name, orderID)

	addr := n.smtp.Host + ":" + n.smtp.Port
	if err := smtp.SendMail(addr, nil, n.smtp.From, []string{user.Email}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
