// Package app is the composition root of imageposter.
//
// # Overview
//
// Run loads configuration, opens the log file, builds the dtf.ru client and
// hands a Service to either the TUI or the headless runner. Service binds one
// client session to the prefs file: it restores and persists the session
// token and turns a PublishRequest into a draft.
//
// # Components
//
//   - app.go: Options, Run, .env loading and the TUI backend adapter
//   - session.go: Service (restore, login, logout, publish)
//   - publish.go: Publisher, the create/upload/save pipeline
//   - headless.go: non-interactive login and publish for scripts
//   - browser.go: opens the draft with the platform URL handler
//
// # Data Flow
//
//	Run()
//	 ├─> config.Load()        config.toml, defaults when missing
//	 ├─> loadEnv()            IMAGEPOSTER_* from .env
//	 ├─> logging.Open()       slog text handler on the log file
//	 ├─> dtf.NewClient()      cookie jar, header profile, rate limit
//	 ├─> NewService()         prefs.toml session mirror
//	 └─> ui.Run() or runHeadless()
//
//	Service.Publish()
//	 ├─> files.Load()               directory walk or explicit list
//	 └─> Publisher.Publish()
//	      ├─> CreateDraftShell()
//	      ├─> UploadFile()  x N     sequential, failures recorded in state.Store
//	      └─> SaveDraft()           successful uploads plus optional watermark
//
// # Error Handling
//
// Fatal for Run: invalid config, an explicit .env file that cannot be read,
// an unwritable log file. A failed upload only marks its item; publishing
// fails when nothing uploaded, when the draft cannot be created or saved, or
// when the server returns no draft URL. A rejected saved token clears the
// session from prefs while a network failure keeps it.
//
// # Headless Login Order
//
//  1. -token flag or IMAGEPOSTER_TOKEN
//  2. the saved session, when no email is given
//  3. -email or IMAGEPOSTER_EMAIL with IMAGEPOSTER_PASSWORD, or a prompt
package app
