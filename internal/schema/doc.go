// SPDX-License-Identifier: MPL-2.0

// Package schema is the single source of truth for the installer app's
// per-entry settings: every recognized key, its default value, the source
// types it applies to, and whether it holds a regular expression. The settings
// resolver and the validator both derive their views from the one table here.
package schema
