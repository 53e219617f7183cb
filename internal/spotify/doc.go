// Package spotify implements a lightweight client for the Spotify Web API.
//
// # Authorization
//
// The client uses the OAuth2 authorization-code flow. [ResolveCredentials]
// builds application credentials from explicit values or the environment;
// [Client.AuthURL] crafts the user-facing authorization URL and
// [Client.ExchangeCode] trades the resulting one-time code for a [Session].
// A session can also be reconstructed from a persisted refresh token with
// [SessionFromRefreshToken] and attached via [Client.SetSession].
//
// Access tokens refresh transparently: a token with less than 30 seconds of
// validity left triggers a refresh-token grant before the request, and a 401
// mid-flight triggers one forced refresh and replay. Refreshes are
// serialized so concurrent flows sharing a client never race the grant,
// which would invalidate each other's refresh tokens server-side.
//
// # Pagination
//
// Collection endpoints return a [Pager], a lazy iterator that follows
// Spotify's paging envelope one page at a time. No page is fetched before
// its first item is requested.
//
// # Batching
//
// Bulk operations exceeding the API's per-request caps (100 playlist tracks,
// 50 track/artist ids, 20 album ids) are split into ordered sequential
// requests behind a single method call. Bulk mutations are at-least-applied,
// not atomic: a mid-batch failure leaves earlier chunks in effect and
// reports the failure point via [BatchError].
//
// # Errors
//
// Failures map onto the sentinels in the shared package
// ([shared.ErrNoSession], [shared.ErrAuthFailed], [shared.ErrRateLimited],
// [shared.ErrAPIRequest], [shared.ErrNetwork]) and the typed errors
// [StatusError], [RateLimitError] and [BatchError], so callers can branch
// with errors.Is and errors.As.
package spotify
