package checkoutklarna

import "strings"

// FriendlyErrorMessage maps known low-level Klarna SDK errors onto messages a
// shopper can act on. Unrecognized messages pass through unchanged.
func FriendlyErrorMessage(message string) string {
	switch {
	case strings.Contains(message, "stack size"):
		return "Klarna could not be shown on this device. Please try another payment method."
	case strings.Contains(message, "Failed to post"):
		return "Could not reach Klarna. Check your connection and try again."
	default:
		return message
	}
}
