package llm

import "strings"

// transientFragments are provider error messages that indicate the request
// may succeed against a different model or endpoint.
var transientFragments = []string{
	"no endpoints found",
	"model not found",
	"not available",
	"provider returned error",
	"rate limit",
	"too many requests",
	"resource has been exhausted",
	"429",
	"503",
	"unavailable",
	"deadline exceeded",
	"internal error encountered",
}

// IsTransient reports whether an error from a completion call is worth
// retrying against a fallback model.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range transientFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
