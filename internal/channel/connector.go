package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const connectorTimeout = 15 * time.Second

// Connector posts activities back to the channel service named by each activity's serviceUrl.
type Connector struct {
	client *http.Client
}

// NewConnector returns a connector authenticated with the bot's client credentials,
// or an unauthenticated one in development mode. base, when non-nil, is the transport
// used for both token and activity requests.
func NewConnector(cfg Config, base *http.Client) *Connector {
	if base == nil {
		base = &http.Client{Timeout: connectorTimeout}
	}
	if cfg.DevelopmentMode() {
		return &Connector{client: base}
	}

	return &Connector{client: credentialsClient(cfg, fmt.Sprintf(tokenURLFormat, cfg.tenant()), base)}
}

// credentialsClient returns a client that attaches and renews an app-only token for the connector scope.
func credentialsClient(cfg Config, tokenURL string, base *http.Client) *http.Client {
	cc := clientcredentials.Config{
		ClientID:     cfg.AppID,
		ClientSecret: cfg.AppPassword,
		TokenURL:     tokenURL,
		Scopes:       []string{botFrameworkScope},
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := cc.Client(ctx)
	client.Timeout = base.Timeout
	return client
}

type resourceResponse struct {
	ID string `json:"id"`
}

// Send posts act to its conversation, threading it under ReplyToID when set.
// It returns the id the channel assigned to the new activity.
func (c *Connector) Send(ctx context.Context, act *Activity) (string, error) {
	endpoint, err := activitiesURL(act)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(act)
	if err != nil {
		return "", fmt.Errorf("encode activity: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send activity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("send activity: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var rr resourceResponse
	// Some channels answer with an empty body.
	_ = json.NewDecoder(resp.Body).Decode(&rr)
	return rr.ID, nil
}

func activitiesURL(act *Activity) (string, error) {
	if act.ServiceURL == "" {
		return "", fmt.Errorf("send activity: serviceUrl is empty")
	}
	if act.Conversation.ID == "" {
		return "", fmt.Errorf("send activity: conversation id is empty")
	}
	if _, err := url.Parse(act.ServiceURL); err != nil {
		return "", fmt.Errorf("send activity: bad serviceUrl: %w", err)
	}

	endpoint := strings.TrimRight(act.ServiceURL, "/") + "/v3/conversations/" + url.PathEscape(act.Conversation.ID) + "/activities"
	if act.ReplyToID != "" {
		endpoint += "/" + url.PathEscape(act.ReplyToID)
	}
	return endpoint, nil
}
