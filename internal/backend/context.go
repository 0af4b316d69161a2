package backend

import "context"

type accessTokenKey struct{}

// WithAccessToken returns a context whose backend calls are made on behalf
// of the holder of token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessToken returns the token set by WithAccessToken, or "".
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}
