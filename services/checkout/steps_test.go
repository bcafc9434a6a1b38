package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepTransitions(t *testing.T) {
	tests := []struct {
		from     Step
		next     Step
		previous Step
	}{
		{from: StepOrderSummary, next: StepReview, previous: StepOrderSummary},
		{from: StepReview, next: StepSuccess, previous: StepOrderSummary},
		{from: StepProcessing, next: StepSuccess, previous: StepReview},
		{from: StepSuccess, next: StepSuccess, previous: StepOrderSummary},
		{from: StepError, next: StepOrderSummary, previous: StepOrderSummary},
	}

	for _, tc := range tests {
		t.Run(string(tc.from), func(t *testing.T) {
			assert.Equal(t, tc.next, NextStep(tc.from))
			assert.Equal(t, tc.previous, PreviousStep(tc.from))
		})
	}
}
