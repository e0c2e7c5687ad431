package api

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-timesheets-client/transport"
)

type Integrations struct {
	sender Sender
}

func (i *Integrations) List(ctx context.Context) ([]IntegrationToken, error) {
	var tokens []IntegrationToken
	req := transport.Request{Method: http.MethodGet, Path: RouteIntegrations}
	if err := call(ctx, i.sender, req, nil, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Upsert stores a third-party token for provider, replacing any previous one.
func (i *Integrations) Upsert(ctx context.Context, payload IntegrationPayload) (*IntegrationToken, error) {
	if len(payload.Provider) < 2 {
		return nil, invalid("provider is required")
	}
	if payload.AccessToken == "" {
		return nil, invalid("access_token is required")
	}

	var token IntegrationToken
	req := transport.Request{Method: http.MethodPost, Path: RouteIntegrations}
	if err := call(ctx, i.sender, req, payload, &token); err != nil {
		return nil, err
	}
	return &token, nil
}
