package render

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripOnce sync.Once
	strict    *bluemonday.Policy

	contentOnce sync.Once
	content     *bluemonday.Policy
)

func stripPolicy() *bluemonday.Policy {
	stripOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// contentPolicy governs the final document markup and inline markup in text
// props.
func contentPolicy() *bluemonday.Policy {
	contentOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowElements("section", "header", "dl", "dt", "dd", "span", "div", "hr", "s", "u")
		policy.AllowAttrs("class").Globally()
		policy.AllowDataAttributes()
		content = policy
	})
	return content
}
