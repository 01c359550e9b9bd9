package enums

import "fmt"

// CheckoutStep is the position of a checkout session in its flow.
// Steps are strictly ordered: cart, billing, payment.
type CheckoutStep string

const (
	CheckoutStepCart    CheckoutStep = "cart"
	CheckoutStepBilling CheckoutStep = "billing"
	CheckoutStepPayment CheckoutStep = "payment"
)

var orderedCheckoutSteps = []CheckoutStep{
	CheckoutStepCart,
	CheckoutStepBilling,
	CheckoutStepPayment,
}

// String implements fmt.Stringer.
func (s CheckoutStep) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CheckoutStep.
func (s CheckoutStep) IsValid() bool {
	return s.index() >= 0
}

// Next returns the following step, or s itself when already at the end.
func (s CheckoutStep) Next() CheckoutStep {
	idx := s.index()
	if idx < 0 || idx == len(orderedCheckoutSteps)-1 {
		return s
	}
	return orderedCheckoutSteps[idx+1]
}

// Prev returns the preceding step, or s itself when already at the start.
func (s CheckoutStep) Prev() CheckoutStep {
	idx := s.index()
	if idx <= 0 {
		return s
	}
	return orderedCheckoutSteps[idx-1]
}

func (s CheckoutStep) index() int {
	for i, candidate := range orderedCheckoutSteps {
		if candidate == s {
			return i
		}
	}
	return -1
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range orderedCheckoutSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}
