// Package dtf is a client for the undocumented dtf.ru web endpoints used by
// the site's own editor.
//
// # Overview
//
// The site has no public API. The client imitates a Chrome session closely
// enough to pass its basic bot checks: a fixed header profile, the tracking
// cookies the front end sets on first visit and the static anti-CSRF header
// the server expects verbatim.
//
// # Session
//
// A Client owns one cookie jar and therefore one session:
//
//	Anonymous --login--> Authenticated --token rejected | Logout--> Anonymous
//
// The session token is the osnova-remember cookie. Cookie, SaveCookies and
// LoadCookies expose it for persistence; LoginWithToken restores and
// verifies it.
//
// # Endpoints
//
//   - POST /auth/simple/login: credential login (form encoded)
//   - GET /auth/check?mode=raw: account check
//   - GET /writing?to=u&mode=ajax: open an empty draft
//   - POST /andropov/upload: single-file multipart upload
//   - POST /writing/save: save a draft (form with a JSON entry field)
//   - POST /hit/{id}: register a view on a post
//
// # Response Envelope
//
// Responses are JSON objects of the form {rc, rm, data, result}. Every
// operation applies the same rules:
//
//   - body is not a JSON object: ErrInvalidResponse with CodeMalformedJSON
//     and the raw body attached
//   - no rc: returned as-is
//   - rc present but not an integer: logged and returned as-is
//   - rc == 200: success
//   - anything else: ErrInvalidResponse carrying rc and rm (or a generic
//     message when rm is absent)
//
// # Errors
//
// Every failure is a *Error whose Kind is one of KindInvalidResponse,
// KindInvalidCredentials or KindTransport. Match them with errors.Is against
// ErrInvalidResponse, ErrInvalidCredentials and ErrTransport. Only the
// account check produces ErrInvalidCredentials; callers use it to discard a
// stored token.
//
// # Retries
//
// Nothing is retried except HitRandomPost, which follows HitPolicy. Upload
// batches are the caller's concern.
package dtf
