// Package config loads imageposter's TOML configuration.
//
// # Overview
//
// The config file tunes how the dtf.ru session behaves: which host it talks
// to, the client build header it sends, how fast it may issue requests and
// where the log file lives. Credentials are never read from it; see prefs
// for the persisted session.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/imageposter/config.toml
//  3. If the file does not exist, use Default()
//  4. Fields that are missing or blank keep their defaults
//
// # TOML Format
//
//	base_url = "https://dtf.ru"
//	js_version = "01aba50c"
//	log_path = "~/.local/share/imageposter/imageposter.log"
//	log_level = "info"
//	request_timeout_seconds = 60
//	requests_per_second = 2.0
//	hit_max_attempts = 10
//
// Setting requests_per_second to zero disables request pacing. Numeric
// fields outside their range are rejected rather than clamped.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML syntax errors and out-of-range values.
package config
