package app

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// plainText strips markup from submitted text. bluemonday escapes what it keeps,
// and ideas are stored and rendered as plain text, so the entities are decoded again.
type plainText struct {
	policy *bluemonday.Policy
}

func newPlainText() plainText {
	return plainText{policy: bluemonday.StrictPolicy()}
}

func (p plainText) Sanitize(s string) string {
	return html.UnescapeString(p.policy.Sanitize(s))
}
