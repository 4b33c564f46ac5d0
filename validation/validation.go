package validation

import (
	"fmt"
	"net/url"
	"strings"

	"tubebrief/errors"
)

// WordBudgets is the enumerated set of summary lengths a client may request.
var WordBudgets = []int{250, 400, 600}

// DefaultWordBudget is used when a request leaves the budget unset.
const DefaultWordBudget = 250

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateURL performs URL validation
func (v *Validator) ValidateURL(urlStr string) error {
	const op = "Validator.ValidateURL"

	if urlStr == "" {
		return errors.InvalidInput(op, nil, "URL is required")
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return errors.InvalidInput(op, err, "Invalid URL format")
	}

	// Protocol validation
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.InvalidInput(op, nil, "URL must use HTTP or HTTPS")
	}

	// Domain validation
	host := parsedURL.Hostname()
	if !strings.Contains(host, "youtube.com") && !strings.Contains(host, "youtu.be") {
		return errors.InvalidInput(op, nil, "Only YouTube URLs are supported")
	}

	return nil
}

// ValidateWordBudget checks the requested summary length against the
// enumerated set. Zero means "use the default" and is accepted.
func (v *Validator) ValidateWordBudget(budget int) error {
	const op = "Validator.ValidateWordBudget"

	if budget == 0 {
		return nil
	}
	for _, b := range WordBudgets {
		if budget == b {
			return nil
		}
	}
	return errors.InvalidInput(op, nil,
		fmt.Sprintf("Word count must be one of %v", WordBudgets))
}
