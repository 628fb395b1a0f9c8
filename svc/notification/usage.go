// Package notification delivers usage warnings to business owners when
// their tier quota is nearly exhausted.
package notification

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/dmitrymomot/stampkit/pkg/email"
	"github.com/dmitrymomot/stampkit/svc/loyalty"
)

// resourceLabels translate internal resource keys into owner-facing wording.
var resourceLabels = map[string]string{
	"monthly_stamps": "monthly stamps",
	"customers":      "customers",
}

// UsageNotifier emails the business owner when usage crosses the warning
// threshold. Delivery is best effort: failures are logged, never propagated,
// so a mail outage cannot block stamping.
type UsageNotifier struct {
	sender     email.EmailSender
	upgradeURL string
	log        *slog.Logger
}

// NewUsageNotifier creates a notifier. upgradeURL is linked in the warning
// email. Panics on a nil sender to fail fast during initialization.
func NewUsageNotifier(sender email.EmailSender, upgradeURL string, log *slog.Logger) *UsageNotifier {
	if sender == nil {
		panic("notification: EmailSender is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &UsageNotifier{sender: sender, upgradeURL: upgradeURL, log: log}
}

// NotifyApproachingLimit implements loyalty.UsageNotifier.
func (n *UsageNotifier) NotifyApproachingLimit(ctx context.Context, business *loyalty.Business, resource string, current, max int) {
	label, ok := resourceLabels[resource]
	if !ok {
		label = resource
	}
	pct := loyalty.UsagePercentage(current, max)

	params := email.SendEmailParams{
		SendTo:   business.Email,
		Subject:  fmt.Sprintf("You've used %d%% of your %s", pct, label),
		BodyHTML: n.renderBody(business, label, current, max, pct),
		Tag:      "usage-warning",
	}
	if err := n.sender.SendEmail(ctx, params); err != nil {
		n.log.ErrorContext(ctx, "failed to send usage warning",
			slog.String("business_id", business.ID),
			slog.String("resource", resource),
			slog.Any("error", err),
		)
	}
}

func (n *UsageNotifier) renderBody(business *loyalty.Business, label string, current, max, pct int) string {
	name := html.EscapeString(business.Name)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>You have used <strong>%d of %d</strong> %s on your current plan (%d%%).</p>
<p>Once the limit is reached, new activity is paused until your usage window resets.</p>`,
		name, current, max, label, pct,
	)
	if n.upgradeURL != "" {
		body += fmt.Sprintf(`
<p><a href="%s">Upgrade to Pro</a> for unlimited %s.</p>`, n.upgradeURL, label)
	}
	return body
}
