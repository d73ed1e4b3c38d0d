package notify

import "context"

// Notification is one outbound email: recipient plus fully rendered
// subject and body. Created and consumed within a single orchestration
// cycle.
type Notification struct {
	Recipient string
	Subject   string
	HTMLBody  string
}

// Notifier sends outbound notification emails. A send failure is
// terminal for the notification: it is logged by the caller and never
// re-enters the booking pipeline.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
