// SPDX-License-Identifier: MPL-2.0

// Package livetest probes the outside world: for every registry entry it
// fetches live release data from the declared source, applies the entry's
// filter/sort/regex pipeline, and reports whether a downloadable artifact and
// a version string can be resolved. Entries are processed sequentially; one
// entry's failure never aborts the batch.
package livetest
