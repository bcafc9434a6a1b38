// Package checkout implements the checkout overlay state machine: step
// transitions, payment-method gating, discount handling and the per-provider
// payment dispatch.
package checkout

type Step string

const (
	StepOrderSummary Step = "orderSummary"
	StepReview       Step = "review"
	StepProcessing   Step = "processing"
	StepSuccess      Step = "success"
	StepError        Step = "error"
)

// NextStep follows the linear flow. Processing and Success both resolve to
// Success; Error restarts at the summary.
func NextStep(step Step) Step {
	switch step {
	case StepOrderSummary:
		return StepReview
	case StepReview:
		return StepSuccess
	case StepProcessing:
		return StepSuccess
	case StepSuccess:
		return StepSuccess
	case StepError:
		return StepOrderSummary
	default:
		return StepOrderSummary
	}
}

// PreviousStep walks back towards the summary. Success and Error also reset
// to the summary rather than re-entering a payment step.
func PreviousStep(step Step) Step {
	switch step {
	case StepOrderSummary:
		return StepOrderSummary
	case StepReview:
		return StepOrderSummary
	case StepProcessing:
		return StepReview
	case StepSuccess:
		return StepOrderSummary
	case StepError:
		return StepOrderSummary
	default:
		return StepOrderSummary
	}
}
