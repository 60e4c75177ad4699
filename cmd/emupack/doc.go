// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for emupack.
//
// This package implements the Cobra command hierarchy for the emupack CLI:
// the root command plus subcommands for adding and normalizing registry
// entries, validation, variant exports, README generation, deep-link
// listing, live release testing, failure issue automation, and release
// publishing.
package cmd
