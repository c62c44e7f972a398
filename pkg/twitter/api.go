package twitter

import "context"

// Gateway is the set of Twitter operations the CRM relies on.
type Gateway interface {
	FollowerCount(ctx context.Context) (int64, error)
	UserTimeline(ctx context.Context) ([]Object, error)
	Mentions(ctx context.Context, since Cursor) ([]Object, error)
	DirectMessages(ctx context.Context, since Cursor) ([]Object, error)
	NewestMentionID(ctx context.Context) (Cursor, error)
	NewestDirectMessageID(ctx context.Context) (Cursor, error)
	ReplyPublic(ctx context.Context, text, inReplyToID string) (Object, error)
	ReplyPrivate(ctx context.Context, text, handle string) (Object, error)
	PublishTweet(ctx context.Context, text string) (Object, error)
	DeleteTweet(ctx context.Context, tweetID string) error
	DeleteDirectMessage(ctx context.Context, messageID string) error
	DeleteAnswer(ctx context.Context, origin CaseOrigin, id string) error
	ToggleFollow(ctx context.Context, accountID string, following bool) (bool, error)
}

// AccountIDProvider supplies the CRM's own numeric Twitter account id.
type AccountIDProvider interface {
	TwitterID(ctx context.Context) (int64, error)
}

// StaticAccountID is an AccountIDProvider returning a fixed id.
type StaticAccountID int64

func (id StaticAccountID) TwitterID(context.Context) (int64, error) {
	return int64(id), nil
}

// ErrorReporter receives the HTTP status of every failed call that got a response.
type ErrorReporter interface {
	ReportStatus(ctx context.Context, statusCode int)
}

// ErrorReporterFunc adapts a function to ErrorReporter.
type ErrorReporterFunc func(ctx context.Context, statusCode int)

func (f ErrorReporterFunc) ReportStatus(ctx context.Context, statusCode int) {
	f(ctx, statusCode)
}

// Notifier receives localized success message keys.
type Notifier interface {
	Notify(ctx context.Context, key string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, key string)

func (f NotifierFunc) Notify(ctx context.Context, key string) {
	f(ctx, key)
}

type nopReporter struct{}

func (nopReporter) ReportStatus(context.Context, int) {}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string) {}
