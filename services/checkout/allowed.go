package checkout

import "github.com/vioreel/viocommerce/services/checkoutapi"

// resolveAllowedMethods intersects the app-config allow-list with the
// backend-reported methods. Config order wins when both are non-empty; a
// missing side leaves the other unrestricted; when both are empty the full
// default set applies. Unknown method names are dropped.
func resolveAllowedMethods(configured []string, reported []string) []checkoutapi.PaymentMethod {
	configMethods := parseMethods(configured)
	backendMethods := parseMethods(reported)

	switch {
	case len(configMethods) > 0 && len(backendMethods) > 0:
		allowed := []checkoutapi.PaymentMethod{}
		for _, method := range configMethods {
			if containsMethod(backendMethods, method) {
				allowed = append(allowed, method)
			}
		}
		return allowed
	case len(backendMethods) > 0:
		return backendMethods
	case len(configMethods) > 0:
		return configMethods
	default:
		return append([]checkoutapi.PaymentMethod{}, checkoutapi.DefaultPaymentMethods...)
	}
}

func parseMethods(names []string) []checkoutapi.PaymentMethod {
	methods := []checkoutapi.PaymentMethod{}
	for _, name := range names {
		if method, ok := checkoutapi.ParsePaymentMethod(name); ok && !containsMethod(methods, method) {
			methods = append(methods, method)
		}
	}
	return methods
}

func containsMethod(methods []checkoutapi.PaymentMethod, method checkoutapi.PaymentMethod) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}
