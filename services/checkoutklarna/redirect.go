package checkoutklarna

import (
	"net/url"
	"strings"

	"github.com/vioreel/viocommerce/services/deeplink"
)

// ClassifyRedirectURL decides whether a web-checkout navigation is the
// success or cancel redirect: first by prefix match against the configured
// URLs, then by a status query parameter. Second return is false when the
// navigation is neither.
func ClassifyRedirectURL(rawURL string, successURL string, cancelURL string) (deeplink.Status, bool) {
	if successURL != "" && strings.HasPrefix(rawURL, successURL) {
		return deeplink.StatusSuccess, true
	}
	if cancelURL != "" && strings.HasPrefix(rawURL, cancelURL) {
		return deeplink.StatusCancel, true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	switch u.Query().Get("status") {
	case string(deeplink.StatusSuccess):
		return deeplink.StatusSuccess, true
	case string(deeplink.StatusCancel):
		return deeplink.StatusCancel, true
	default:
		return "", false
	}
}
