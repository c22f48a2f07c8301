package channel

const (
	AppTypeMultiTenant  = "MultiTenant"
	AppTypeSingleTenant = "SingleTenant"

	DefaultOpenIDKeysURL = "https://login.botframework.com/v1/.well-known/keys"
	botFrameworkIssuer   = "https://api.botframework.com"
	botFrameworkScope    = "https://api.botframework.com/.default"
	botFrameworkTenant   = "botframework.com"
	tokenURLFormat       = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
)

// Config carries the bot registration credentials. An empty AppID or AppPassword
// puts the adapter in development mode: inbound calls are not authenticated and
// replies are posted without a token, as the local emulator expects.
type Config struct {
	AppID       string `envconfig:"MICROSOFT_APP_ID"`
	AppPassword string `envconfig:"MICROSOFT_APP_PASSWORD"`
	TenantID    string `envconfig:"MICROSOFT_APP_TENANT_ID"`
	AppType     string `envconfig:"MICROSOFT_APP_TYPE" default:"MultiTenant"`
	KeysURL     string `envconfig:"BOT_OPENID_JWKS_URL" default:"https://login.botframework.com/v1/.well-known/keys"`
}

// DevelopmentMode reports whether credentials are absent.
func (c Config) DevelopmentMode() bool {
	return c.AppID == "" || c.AppPassword == ""
}

func (c Config) tenant() string {
	if c.AppType == AppTypeSingleTenant && c.TenantID != "" {
		return c.TenantID
	}
	return botFrameworkTenant
}
