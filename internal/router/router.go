// Package router classifies inbound messages into agent targets. Routing is
// deterministic keyword matching; no LLM call, so a misroute is always
// reproducible from the message text.
package router

import (
	"regexp"
	"strings"
)

// Target names the subsystem that should handle a message.
type Target string

const (
	TargetInbox    Target = "inbox"
	TargetProfile  Target = "profile"
	TargetFollowup Target = "followup"
	TargetClarify  Target = "clarify"
)

// RouteResult is a routing decision plus the evidence behind it.
type RouteResult struct {
	Target Target
	Reason string
}

var urlRe = regexp.MustCompile(`https?://[^\s<>"']+`)

var followupKeywords = []string{
	"follow up", "follow-up", "followup", "check in", "nudge", "chase",
}

var profileKeywords = []string{
	"my profile", "update profile", "bullet bank", "my resume bullets",
	"update my info", "my background",
}

// jdIndicators are phrases common in pasted job postings. Two or more in
// one message routes to the inbox pipeline.
var jdIndicators = []string{
	"job description", "responsibilities", "requirements", "qualifications",
	"we are looking for", "we're looking for", "about the role",
	"years of experience", "apply", "salary", "benefits", "hiring",
	"position", "candidate",
}

// Route classifies a message. Rules fire in fixed priority order: an image
// always means a screenshotted posting, a URL always means a posting link,
// then explicit follow-up and profile intents, then JD-looking text.
func Route(text string, hasImage bool) RouteResult {
	if hasImage {
		return RouteResult{Target: TargetInbox, Reason: "message carries an image"}
	}
	if urlRe.MatchString(text) {
		return RouteResult{Target: TargetInbox, Reason: "message contains a URL"}
	}

	lower := strings.ToLower(text)
	for _, kw := range followupKeywords {
		if strings.Contains(lower, kw) {
			return RouteResult{Target: TargetFollowup, Reason: "follow-up keyword: " + kw}
		}
	}
	for _, kw := range profileKeywords {
		if strings.Contains(lower, kw) {
			return RouteResult{Target: TargetProfile, Reason: "profile keyword: " + kw}
		}
	}

	hits := 0
	for _, ind := range jdIndicators {
		if strings.Contains(lower, ind) {
			hits++
		}
	}
	if hits >= 2 {
		return RouteResult{Target: TargetInbox, Reason: "text matches job-posting indicators"}
	}
	return RouteResult{Target: TargetClarify, Reason: "no routing rule matched"}
}
