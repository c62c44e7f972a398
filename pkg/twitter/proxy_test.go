package twitter

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/NethermindEth/crm-twitter/pkg/utils/errors"
)

func newTestRelay(t *testing.T, handler http.HandlerFunc) (*RelayClient, *boundaryRecorder) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	recorder := &boundaryRecorder{}
	return NewRelayClient(server.URL+"/", server.Client(), recorder, recorder), recorder
}

func TestRelayClient_MentionsCursor(t *testing.T) {
	tests := []struct {
		name      string
		since     Cursor
		wantQuery string
	}{
		{"zero cursor sends no since_id", Cursor("0"), ""},
		{"padded zero cursor sends no since_id", Cursor("000"), ""},
		{"absent cursor sends no since_id", CursorNone, ""},
		{"incremental cursor", Cursor("55"), "since_id=55"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relay, _ := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/mentions" {
					t.Errorf("Unexpected path %s", r.URL.Path)
				}
				if r.URL.RawQuery != tt.wantQuery {
					t.Errorf("Expected query %q, got %q", tt.wantQuery, r.URL.RawQuery)
				}
				fmt.Fprint(w, `{"data":[{"id_str":"56"}]}`)
			})

			mentions, err := relay.Mentions(context.Background(), tt.since)
			if err != nil {
				t.Fatalf("Mentions() error = %v", err)
			}
			if len(mentions) != 1 || mentions[0].IDStr() != "56" {
				t.Errorf("Unexpected mentions %v", mentions)
			}
		})
	}
}

func TestRelayClient_KeepsLargeIDs(t *testing.T) {
	const data = `[{"id":1850000000000000001,"id_str":"1850000000000000001","recipient_id":1234567890123456789}]`
	relay, _ := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":%s}`, data)
	})

	messages, err := relay.DirectMessages(context.Background(), CursorNone)
	if err != nil {
		t.Fatalf("DirectMessages() error = %v", err)
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(raw) != data {
		t.Errorf("Payload changed on the way through:\n got  %s\n want %s", raw, data)
	}
}

func TestRelayClient_EmptyListIsNotNil(t *testing.T) {
	relay, _ := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	messages, err := relay.DirectMessages(context.Background(), CursorNone)
	if err != nil {
		t.Fatalf("DirectMessages() error = %v", err)
	}
	if messages == nil || len(messages) != 0 {
		t.Errorf("Expected an empty, non-nil list, got %#v", messages)
	}
}

func TestRelayClient_Newest(t *testing.T) {
	relay, _ := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mentions/newest":
			fmt.Fprint(w, `{"data":{"cursor":"","none":true}}`)
		case "/direct-messages/newest":
			fmt.Fprint(w, `{"data":{"cursor":"808","none":false}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	mention, err := relay.NewestMentionID(context.Background())
	if err != nil {
		t.Fatalf("NewestMentionID() error = %v", err)
	}
	if !mention.IsNone() {
		t.Errorf("Expected the none cursor, got %q", mention)
	}

	direct, err := relay.NewestDirectMessageID(context.Background())
	if err != nil {
		t.Fatalf("NewestDirectMessageID() error = %v", err)
	}
	if direct != "808" {
		t.Errorf("Expected cursor 808, got %q", direct)
	}
}

func TestRelayClient_FlashForwardedToNotifier(t *testing.T) {
	relay, recorder := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/replies" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Expected a JSON body, got content type %q", got)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		want := map[string]string{"type": "private", "text": "hi & bye", "handle": "jane"}
		if !reflect.DeepEqual(body, want) {
			t.Errorf("Expected body %v, got %v", want, body)
		}

		fmt.Fprint(w, `{"data":{"id_str":"31"},"flash":["tweet_sent"]}`)
	})

	message, err := relay.ReplyPrivate(context.Background(), "hi & bye", "jane")
	if err != nil {
		t.Fatalf("ReplyPrivate() error = %v", err)
	}
	if message.IDStr() != "31" {
		t.Errorf("Expected id 31, got %q", message.IDStr())
	}
	if got := recorder.Messages(); !reflect.DeepEqual(got, []string{MessageTweetSent}) {
		t.Errorf("Expected the flash to reach the notifier, got %v", got)
	}
	if len(recorder.Statuses()) != 0 {
		t.Errorf("Expected no reported statuses, got %v", recorder.Statuses())
	}
}

func TestRelayClient_TwitterStatusReported(t *testing.T) {
	relay, recorder := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/tweets/123" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"flash":["error_403"],"error":"delete_tweet: twitter API error: status code 403","type":"client","status":403}`)
	})

	err := relay.DeleteTweet(context.Background(), "123")
	if errors.TypeOf(err) != errors.TypeClient {
		t.Fatalf("Expected a client error, got %v", err)
	}
	if status, ok := errors.StatusCode(err); !ok || status != http.StatusForbidden {
		t.Errorf("Expected status 403 on the error, got %d", status)
	}
	if got := recorder.Statuses(); !reflect.DeepEqual(got, []int{http.StatusForbidden}) {
		t.Errorf("Expected status 403 reported once, got %v", got)
	}
	if len(recorder.Messages()) != 0 {
		t.Errorf("Expected no messages, got %v", recorder.Messages())
	}
}

func TestRelayClient_ErrorWithoutStatus(t *testing.T) {
	relay, recorder := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":"mentions: do request","type":"transport"}`)
	})

	_, err := relay.Mentions(context.Background(), CursorNone)
	if errors.TypeOf(err) != errors.TypeTransport {
		t.Errorf("Expected a transport error, got %v", err)
	}
	if len(recorder.Statuses()) != 0 {
		t.Errorf("Expected no reported statuses, got %v", recorder.Statuses())
	}
}

func TestRelayClient_UndecodableResponse(t *testing.T) {
	relay, _ := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `<html>oops</html>`)
	})

	_, err := relay.FollowerCount(context.Background())
	if errors.TypeOf(err) != errors.TypeDecode {
		t.Errorf("Expected a decode error, got %v", err)
	}
}

func TestRelayClient_ToggleFollow(t *testing.T) {
	relay, recorder := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/follows/777" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		var body map[string]bool
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		if !body["following"] {
			t.Errorf("Expected following=true in the body, got %v", body)
		}

		fmt.Fprint(w, `{"data":{"following":false},"flash":["unfollow"]}`)
	})

	following, err := relay.ToggleFollow(context.Background(), "777", true)
	if err != nil {
		t.Fatalf("ToggleFollow() error = %v", err)
	}
	if following {
		t.Error("Expected the account to be unfollowed")
	}
	if got := recorder.Messages(); !reflect.DeepEqual(got, []string{MessageUnfollow}) {
		t.Errorf("Expected the unfollow message, got %v", got)
	}
}

func TestRelayClient_DeleteAnswerDispatch(t *testing.T) {
	var paths []string
	relay, _ := newTestRelay(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		fmt.Fprint(w, `{"flash":["tweet_deleted"]}`)
	})

	ctx := context.Background()
	if err := relay.DeleteAnswer(ctx, OriginMention, "1"); err != nil {
		t.Fatalf("DeleteAnswer(mention) error = %v", err)
	}
	if err := relay.DeleteAnswer(ctx, OriginDirect, "2"); err != nil {
		t.Fatalf("DeleteAnswer(direct) error = %v", err)
	}
	if err := relay.DeleteAnswer(ctx, CaseOrigin("email"), "3"); !stderrors.Is(err, ErrUnknownOrigin) {
		t.Errorf("DeleteAnswer(email) error = %v, want %v", err, ErrUnknownOrigin)
	}

	want := []string{"DELETE /tweets/1", "DELETE /direct-messages/2"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("Expected requests %v, got %v", want, paths)
	}
}
