package graph

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenURLFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	graphScope     = "https://graph.microsoft.com/.default"
)

// NewTokenSource builds a client-credentials token source for the Graph API.
// The returned source caches the token until it expires (the identity
// endpoint grants roughly an hour), so repeated fetches within that window
// reuse it without touching the network.
func NewTokenSource(ctx context.Context, tenantID, clientID, clientSecret string) oauth2.TokenSource {
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf(tokenURLFormat, tenantID),
		Scopes:       []string{graphScope},
	}
	return cc.TokenSource(ctx)
}
