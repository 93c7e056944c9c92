package notes

import "unicode/utf8"

// Field limits, counted in Unicode code points. Whitespace counts like any
// other character.
const (
	MaxTitleLength   = 100
	MaxContentLength = 1000
)

// rule is one named step of note input validation.
type rule struct {
	name  string
	check func(title, content string) error
}

// createRules run in this order and stop at the first failure, so a caller
// with several problems sees exactly one message. Changing the order changes
// which message that is.
var createRules = []rule{
	{
		name: "presence",
		check: func(title, content string) error {
			if title == "" || content == "" {
				return ErrTitleContentRequired
			}
			return nil
		},
	},
	{
		name: "title_length",
		check: func(title, _ string) error {
			if utf8.RuneCountInString(title) > MaxTitleLength {
				return ErrTitleTooLong
			}
			return nil
		},
	},
	{
		name: "content_length",
		check: func(_, content string) error {
			if utf8.RuneCountInString(content) > MaxContentLength {
				return ErrContentTooLong
			}
			return nil
		},
	},
}

// validateCreate returns the first failing rule's error and its name.
func validateCreate(title, content string) (string, error) {
	for _, r := range createRules {
		if err := r.check(title, content); err != nil {
			return r.name, err
		}
	}
	return "", nil
}
