// Package ui provides the terminal user interface for imageposter.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. A single Model owns every screen and
// talks to the session layer through the Backend interface, so the package
// never imports the application shell. Long operations (login, publishing,
// opening a browser) run as tea.Cmd functions and report back with
// messages; the model itself never blocks.
//
// # Package Structure
//
//   - app.go: Model, messages, commands and Run
//   - view.go: rendering of the individual screens
//   - form.go: stack of text inputs with focus handling
//   - keys.go: key bindings and help text
//   - help.go: help overlay
//   - theme.go: color palettes and Lipgloss styles
//   - logo.go: figlet banner with a plain-text fallback
//
// # Screens
//
//   - Restoring: checks the saved session token on startup
//   - Login: email and password, or a pasted session token (ctrl+t)
//   - Compose: image directory or file list, post title, watermark toggle
//   - Progress: per-file upload status read from state.Store on a tick
//   - Result: draft URL, opened in the browser unless disabled
//
// # Event Flow
//
//  1. Init starts the poll tick, the spinner and the session restore
//  2. A restore or login result moves the model to Compose or Login
//  3. Submitting Compose starts Backend.Publish with a cancellable context
//  4. Ticks copy the store snapshot into the model until the publish
//     result arrives
//  5. esc on the progress screen cancels the upload in flight
package ui
