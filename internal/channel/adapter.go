package channel

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/golang-jwt/jwt/v5"

	errx "github.com/icebreaker-bot/server/internal/core/error"
	logx "github.com/icebreaker-bot/server/pkg/logger"
)

// Sender delivers an outbound activity.
type Sender interface {
	Send(ctx context.Context, act *Activity) (string, error)
}

// Verifier authenticates the Authorization header of an inbound call.
type Verifier interface {
	Authenticate(ctx context.Context, authHeader string) (jwt.MapClaims, error)
}

// Handler runs the bot's logic for one turn.
type Handler interface {
	OnTurn(ctx context.Context, turn *TurnContext) error
}

type HandlerFunc func(ctx context.Context, turn *TurnContext) error

func (f HandlerFunc) OnTurn(ctx context.Context, turn *TurnContext) error {
	return f(ctx, turn)
}

// InvokeResponse is the synchronous answer to an invoke activity.
type InvokeResponse struct {
	Status int
	Body   any
}

// TurnContext binds one inbound activity to the primitive that replies to it.
type TurnContext struct {
	activity  *Activity
	sender    Sender
	responded atomic.Bool
}

func NewTurnContext(act *Activity, sender Sender) *TurnContext {
	return &TurnContext{activity: act, sender: sender}
}

func (t *TurnContext) Activity() *Activity {
	return t.activity
}

// SendActivity replies to the inbound activity with markdown text.
func (t *TurnContext) SendActivity(ctx context.Context, text string) error {
	if _, err := t.sender.Send(ctx, NewReply(t.activity, text)); err != nil {
		return err
	}
	t.responded.Store(true)
	return nil
}

// Responded reports whether at least one reply was delivered.
func (t *TurnContext) Responded() bool {
	return t.responded.Load()
}

// Adapter authenticates inbound activities and runs them through a Handler.
type Adapter struct {
	verifier Verifier
	sender   Sender

	// OnTurnError, when set, receives handler failures instead of ProcessActivity's caller.
	OnTurnError func(ctx context.Context, turn *TurnContext, err error)
}

// NewAdapter wires the Bot Framework authenticator and connector from cfg.
// In development mode inbound calls are not authenticated. ctx bounds the
// background refresh of the channel's signing keys.
func NewAdapter(ctx context.Context, cfg Config, client *http.Client) (*Adapter, error) {
	var verifier Verifier
	if cfg.DevelopmentMode() {
		logx.Warn().Msg("Channel credentials not set, running without inbound authentication")
	} else {
		auth, err := NewAuthenticator(ctx, cfg.AppID, cfg.KeysURL)
		if err != nil {
			return nil, errx.Configuration("channel authenticator: %v", err)
		}
		verifier = auth
	}
	return NewAdapterWith(verifier, NewConnector(cfg, client)), nil
}

// NewAdapterWith builds an adapter from explicit parts. A nil verifier disables authentication.
func NewAdapterWith(verifier Verifier, sender Sender) *Adapter {
	return &Adapter{verifier: verifier, sender: sender}
}

var errNilActivity = errors.New("activity is nil")

// ProcessActivity authenticates and dispatches act. Authentication failures are
// errx.ChannelAuth. Invoke activities are not supported and answered with 501.
func (a *Adapter) ProcessActivity(ctx context.Context, authHeader string, act *Activity, h Handler) (*InvokeResponse, error) {
	if act == nil {
		return nil, errx.MalformedRequest(errNilActivity)
	}
	if a.verifier != nil {
		if _, err := a.verifier.Authenticate(ctx, authHeader); err != nil {
			return nil, errx.ChannelAuth(err)
		}
	}

	if act.Type == ActivityTypeInvoke {
		return &InvokeResponse{Status: http.StatusNotImplemented}, nil
	}

	turn := NewTurnContext(act, a.sender)
	if err := h.OnTurn(ctx, turn); err != nil {
		if a.OnTurnError == nil {
			return nil, err
		}
		a.OnTurnError(ctx, turn, err)
	}
	return nil, nil
}

// LogTurnError is an OnTurnError hook that only logs. It never replies, so a
// failing send cannot start a reply loop.
func LogTurnError(_ context.Context, turn *TurnContext, err error) {
	act := turn.Activity()
	logx.Error().
		Err(err).
		Str("activity_id", act.ID).
		Str("conversation_id", act.Conversation.ID).
		Str("kind", string(errx.KindOf(err))).
		Msg("Unhandled error during turn")
}
