package checkoutklarna

// Payment method categories the native surface can present.
const (
	CategoryPayNow      = "pay_now"
	CategoryPayLater    = "pay_later"
	CategorySliceIt     = "slice_it"
	CategoryPayOverTime = "pay_over_time"
)

var supportedCategories = map[string]bool{
	CategoryPayNow:      true,
	CategoryPayLater:    true,
	CategorySliceIt:     true,
	CategoryPayOverTime: true,
}

// MatchCategory picks the first category from the init response that the
// native surface supports.
func MatchCategory(categories []string) (string, bool) {
	for _, category := range categories {
		if supportedCategories[category] {
			return category, true
		}
	}

	return "", false
}
