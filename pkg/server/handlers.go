package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NethermindEth/crm-twitter/pkg/twitter"
	"github.com/NethermindEth/crm-twitter/pkg/utils/errors"
)

// Response is the envelope of every relay answer.
type Response struct {
	Data   any      `json:"data,omitempty"`
	Flash  []string `json:"flash,omitempty"`
	Error  string   `json:"error,omitempty"`
	Type   string   `json:"type,omitempty"`
	Status int      `json:"status,omitempty"`
}

type CursorData struct {
	Cursor string `json:"cursor"`
	None   bool   `json:"none"`
}

type FollowerCountData struct {
	FollowersCount int64 `json:"followers_count"`
}

type FollowData struct {
	Following bool `json:"following"`
}

type ReplyRequest struct {
	Type      string `json:"type" binding:"required,oneof=public private"`
	Text      string `json:"text" binding:"required"`
	InReplyTo string `json:"in_reply_to"`
	Handle    string `json:"handle"`
}

type TweetRequest struct {
	Text string `json:"text" binding:"required"`
}

type FollowRequest struct {
	Following bool `json:"following"`
}

const (
	ReplyTypePublic  = "public"
	ReplyTypePrivate = "private"
)

// httpStatus maps a gateway failure onto the relay's response status.
func httpStatus(err error) int {
	switch errors.TypeOf(err) {
	case errors.TypeClient, errors.TypeServer:
		if status, ok := errors.StatusCode(err); ok {
			return status
		}
		return http.StatusBadGateway
	case errors.TypeValidation:
		return http.StatusBadRequest
	case errors.TypeTransport, errors.TypeDecode:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respond(c *gin.Context, data any) {
	c.JSON(http.StatusOK, &Response{
		Data:  data,
		Flash: flashFromContext(c.Request.Context()).list(),
	})
}

func respondError(c *gin.Context, err error) {
	resp := &Response{
		Flash: flashFromContext(c.Request.Context()).list(),
		Error: err.Error(),
		Type:  string(errors.TypeOf(err)),
	}
	if status, ok := errors.StatusCode(err); ok {
		resp.Status = status
	}
	c.JSON(httpStatus(err), resp)
}

func (s *Server) HandleFollowerCount(c *gin.Context) {
	count, err := s.gateway.FollowerCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, &FollowerCountData{FollowersCount: count})
}

func (s *Server) HandleUserTimeline(c *gin.Context) {
	tweets, err := s.gateway.UserTimeline(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, tweets)
}

func (s *Server) HandleMentions(c *gin.Context) {
	mentions, err := s.gateway.Mentions(c.Request.Context(), twitter.Cursor(c.Query("since_id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, mentions)
}

func (s *Server) HandleDirectMessages(c *gin.Context) {
	messages, err := s.gateway.DirectMessages(c.Request.Context(), twitter.Cursor(c.Query("since_id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, messages)
}

func (s *Server) HandleNewestMention(c *gin.Context) {
	cursor, err := s.gateway.NewestMentionID(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, &CursorData{Cursor: cursor.String(), None: cursor.IsNone()})
}

func (s *Server) HandleNewestDirectMessage(c *gin.Context) {
	cursor, err := s.gateway.NewestDirectMessageID(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, &CursorData{Cursor: cursor.String(), None: cursor.IsNone()})
}

func (s *Server) HandleReply(c *gin.Context) {
	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.New(errors.TypeValidation, "invalid reply request", err))
		return
	}

	var (
		reply twitter.Object
		err   error
	)
	if req.Type == ReplyTypePublic {
		reply, err = s.gateway.ReplyPublic(c.Request.Context(), req.Text, req.InReplyTo)
	} else {
		reply, err = s.gateway.ReplyPrivate(c.Request.Context(), req.Text, req.Handle)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, reply)
}

func (s *Server) HandlePublishTweet(c *gin.Context) {
	var req TweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.New(errors.TypeValidation, "invalid tweet request", err))
		return
	}

	tweet, err := s.gateway.PublishTweet(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, tweet)
}

func (s *Server) HandleDeleteTweet(c *gin.Context) {
	if err := s.gateway.DeleteTweet(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, nil)
}

func (s *Server) HandleDeleteDirectMessage(c *gin.Context) {
	if err := s.gateway.DeleteDirectMessage(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, nil)
}

func (s *Server) HandleDeleteAnswer(c *gin.Context) {
	origin := twitter.CaseOrigin(c.Query("origin"))
	if err := s.gateway.DeleteAnswer(c.Request.Context(), origin, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, nil)
}

func (s *Server) HandleToggleFollow(c *gin.Context) {
	var req FollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.New(errors.TypeValidation, "invalid follow request", err))
		return
	}

	following, err := s.gateway.ToggleFollow(c.Request.Context(), c.Param("account_id"), req.Following)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, &FollowData{Following: following})
}
