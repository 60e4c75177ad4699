// SPDX-License-Identifier: MPL-2.0

// Package deeplink builds the click-to-install URLs the installer app parses
// to add an entry without manual input.
package deeplink

import (
	"fmt"
	"net/url"

	"emupack-cli/internal/export"
	"emupack-cli/pkg/catalog"
)

const (
	// RedirectBase is the fixed redirect host that hands the payload to the
	// installer's URL scheme handler.
	RedirectBase = "http://apps.obtainium.imranr.dev/redirect.html"

	// AppScheme is the installer's own URL scheme prefix.
	AppScheme = "obtainium://app/"
)

// ForEntry builds the deep-link URL for one entry: the installer-consumable
// form (meta stripped, settings hydrated), compactly serialized and
// URL-encoded behind the redirect host.
func ForEntry(e *catalog.Entry) (string, error) {
	installable, err := export.Entry(e)
	if err != nil {
		return "", fmt.Errorf("preparing entry %s: %w", e.ID, err)
	}
	payload, err := installable.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encoding entry %s: %w", e.ID, err)
	}
	encoded := url.QueryEscape(string(payload))
	return RedirectBase + "?r=" + AppScheme + encoded, nil
}
