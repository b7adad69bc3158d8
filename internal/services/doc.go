// Package services implements [CatalogClient], the read-only client for the remote music catalog.
//
// # Authentication
//
// The client uses the app-credential grant ([clientcredentials.Config]) against the token URL.
// [CatalogClient.EnsureFreshToken] runs before every read and exchanges the credentials again
// once the held token is within [DefaultSafetyMargin] of expiring. Issued tokens are handed to the
// callback registered with [CatalogClient.SetTokenCallback] so they can be persisted.
//
// The token is guarded by a mutex, so one client can serve concurrent export workers; callers
// racing on an expiring token trigger a single exchange.
//
// # Transport
//
// Reads go through a [retryablehttp.Client] paced by a [rate.Limiter]:
//   - 30s per-request timeout
//   - up to 3 retries with exponential backoff (300ms to 5s), honoring Retry-After
//   - only transport errors, 429 and 5xx other than 501 are retried
//
// The token exchange uses the plain client and is never retried.
//
// # Endpoints
//
// An [Endpoint] names a listing path, its record kind, its per-request maximum and the gjson path
// of its record array. Limits above the maximum are clamped, never split into several requests.
// Batch lookups silently drop ids past the per-kind maximum (20 albums, 50 tracks or artists).
//
// # Normalization
//
// [Normalize] flattens the nested payloads into [models.Track], [models.Album], [models.Artist]
// and [models.Playlist] with zero-value defaults. Only a missing or non-array record list is an
// error.
//
// # Errors
//
// Failures wrap the [shared] sentinels:
//   - [shared.ErrNotConfigured] : client id or secret missing
//   - [shared.ErrAuthFailed] : token exchange rejected
//   - [shared.ErrTokenExpired] : the catalog answered 401, the token is dropped
//   - [shared.ErrNotFound] : 404
//   - [shared.ErrRateLimited] : 429 after retries
//   - [shared.ErrServiceUnavailable] : 5xx after retries
//   - [shared.ErrMalformedResponse] : body is not JSON or lacks its record list
//   - [shared.ErrAPIRequest] : any other request failure
//
// An empty slice with a nil error means the catalog returned no matches.
package services
