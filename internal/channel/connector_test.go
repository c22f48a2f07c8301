package channel

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnector_SendDevelopmentMode(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		got     Activity
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"id":"reply-1"}`))
	}))
	defer srv.Close()

	c := NewConnector(Config{}, srv.Client())
	inbound := &Activity{
		Type:         ActivityTypeMessage,
		ID:           "act-1",
		ServiceURL:   srv.URL + "/",
		From:         ChannelAccount{ID: "user"},
		Recipient:    ChannelAccount{ID: "bot"},
		Conversation: ConversationAccount{ID: "a:b/c"},
	}

	id, err := c.Send(context.Background(), NewReply(inbound, "hello"))
	require.NoError(t, err)

	assert.Equal(t, "reply-1", id)
	assert.Equal(t, "/v3/conversations/a:b%2Fc/activities/act-1", gotPath)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, TextFormatMarkdown, got.TextFormat)
	assert.Equal(t, "bot", got.From.ID)
	assert.Equal(t, "user", got.Recipient.ID)
}

func TestConnector_SendErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewConnector(Config{}, srv.Client())

	_, err := c.Send(context.Background(), &Activity{ServiceURL: srv.URL, Conversation: ConversationAccount{ID: "c"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	_, err = c.Send(context.Background(), &Activity{Conversation: ConversationAccount{ID: "c"}})
	require.Error(t, err)

	_, err = c.Send(context.Background(), &Activity{ServiceURL: srv.URL})
	require.Error(t, err)
}

func TestConnector_UsesClientCredentials(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	token := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, botFrameworkScope, r.PostForm.Get("scope"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`))
	}))
	defer token.Close()

	c := &Connector{client: credentialsClient(Config{AppID: "id", AppPassword: "secret"}, token.URL, token.Client())}

	_, err := c.Send(context.Background(), &Activity{ServiceURL: srv.URL, Conversation: ConversationAccount{ID: "c"}})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestConfig_Tenant(t *testing.T) {
	assert.Equal(t, botFrameworkTenant, Config{}.tenant())
	assert.Equal(t, botFrameworkTenant, Config{AppType: AppTypeSingleTenant}.tenant())
	assert.Equal(t, "t-1", Config{AppType: AppTypeSingleTenant, TenantID: "t-1"}.tenant())
	assert.Equal(t, botFrameworkTenant, Config{AppType: AppTypeMultiTenant, TenantID: "t-1"}.tenant())
}
