package twitter

import (
	stderrors "errors"
	"strconv"
	"strings"
)

// Error definitions
var (
	ErrInvalidConfig            = stderrors.New("invalid configuration")
	ErrMissingAppCredentials    = stderrors.New("missing consumer key or secret")
	ErrMissingAccessCredentials = stderrors.New("missing access token or secret")
	ErrMissingAccountProvider   = stderrors.New("missing account id provider")
	ErrEmptyText                = stderrors.New("text must not be empty")
	ErrMissingID                = stderrors.New("identifier must not be empty")
	ErrUnknownOrigin            = stderrors.New("unknown case origin")
	ErrTrailingData             = stderrors.New("unexpected data after JSON value")
)

// Message keys handed to the Notifier after successful mutations. The host's
// localization resources are keyed on these literals.
const (
	MessageTweetSent    = "tweet_sent"
	MessageTweetDeleted = "tweet_deleted"
	MessageFollow       = "follow"
	MessageUnfollow     = "unfollow"
)

// Object is a tweet, direct message or user payload decoded verbatim from Twitter.
type Object map[string]any

// IDStr returns the string-encoded 64-bit id of the object, or "" when absent.
func (o Object) IDStr() string {
	if o == nil {
		return ""
	}
	if id, ok := o["id_str"].(string); ok {
		return id
	}
	return ""
}

// Cursor is the since-id marking the newest mention or direct message already processed.
type Cursor string

// CursorNone is returned when a feed has no items. It is a zero cursor, so passing
// it back to Mentions or DirectMessages bootstraps with the latest single item.
const CursorNone Cursor = ""

// CursorFromInt converts a numeric id into a Cursor.
func CursorFromInt(id int64) Cursor {
	if id <= 0 {
		return CursorNone
	}
	return Cursor(strconv.FormatInt(id, 10))
}

// IsZero reports whether the cursor selects the "latest only" request shape:
// it is empty or parses as the number zero ("0", "00", "+0").
func (c Cursor) IsZero() bool {
	s := strings.TrimSpace(string(c))
	if s == "" {
		return true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return err == nil && n == 0
}

// IsNone reports whether the cursor is the empty-feed sentinel.
func (c Cursor) IsNone() bool {
	return c == CursorNone
}

func (c Cursor) String() string {
	return string(c)
}

// CaseOrigin is the channel a CRM case was opened from.
type CaseOrigin string

const (
	OriginMention CaseOrigin = "Twitter mention"
	OriginDirect  CaseOrigin = "Twitter direct"
)

// ErrorResponse is the body Twitter returns alongside a failing status.
type ErrorResponse struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}
