// Package apiclient executes requests against the Infrasync backend with
// uniform error classification, bounded retry with backoff, and optional
// user-facing notification on terminal failure.
//
// Every resource service in svc/ is built on a Client. A Client carries a
// cookie jar, so the backend session cookie set during login rides along on
// every call, and owns one {data, loading, error} state triple mirroring
// the tri-state every view renders from. Create one Client per consuming
// component; the state is not meant to be shared.
//
// Failure handling follows the product's conventions rather than raising
// errors at the call site: a terminal failure resolves to a nil body, the
// classified error is available from Err, and a toast is pushed to the
// configured notifier. A 401 is not surfaced as an error: it redirects
// the whole client to the login entry via the navigator and resolves
// silently.
package apiclient
