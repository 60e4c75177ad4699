// SPDX-License-Identifier: MPL-2.0

// Package catalog defines the applications.json data model: catalog entries,
// per-variant inclusion rules, and lossless registry file I/O. Unrecognized
// entry keys survive a load/save round trip so that newer schema additions
// made elsewhere are never silently dropped.
package catalog
