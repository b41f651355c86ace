package cache

import "context"

// Notification carries the fixed visual parameters of a displayed push
// notification plus its single actionable choice.
type Notification struct {
	Title  string
	Body   string
	Icon   string
	Badge  string
	Action string
}

const notificationAction = "open"

// Notifier displays notifications. The hosting runtime provides the real
// implementation; tests provide a stub.
type Notifier interface {
	Show(ctx context.Context, n Notification) error
}

// Opener opens or focuses the application root page in a browser context.
type Opener interface {
	OpenRoot(ctx context.Context) error
}

// SetNotificationHooks wires the runtime-provided notification display and
// page opener.
func (c *Cache) SetNotificationHooks(n Notifier, o Opener) {
	c.notifier = n
	c.opener = o
}

// HandlePush displays a notification for the received push payload. The
// payload is used as the body text; everything else is fixed.
func (c *Cache) HandlePush(ctx context.Context, payload []byte) error {
	if c.notifier == nil {
		return nil
	}

	body := string(payload)
	if body == "" {
		body = "You have a new update."
	}

	return c.notifier.Show(ctx, Notification{
		Title:  "AgentDesk",
		Body:   body,
		Icon:   "/icons/icon-192.png",
		Badge:  "/icons/icon-72.png",
		Action: notificationAction,
	})
}

// HandleNotificationAction reacts to the user activating the notification's
// single action by opening the application root.
func (c *Cache) HandleNotificationAction(ctx context.Context, action string) error {
	if action != notificationAction || c.opener == nil {
		return nil
	}
	return c.opener.OpenRoot(ctx)
}
