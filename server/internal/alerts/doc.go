// Package alerts evaluates per-target rules against every snapshot the server
// stores and delivers Slack, Teams or generic HTTP webhooks when a rule fires
// or resolves.
//
// A rule condition is "field op value" over one target's result:
//
//	status == CRITICAL
//	status != NORMAL
//	latency == Down
//	severity >= 1
//
// severity is the numeric order NORMAL=0, WARNING=1, CRITICAL=2, UNKNOWN=-1.
// A firing alert is suppressed from re-firing for the rule's cooldown and
// resolves as soon as its condition is false or the target disappears.
package alerts
