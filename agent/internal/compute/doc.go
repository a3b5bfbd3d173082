// Package compute derives a target's status from its feed entries.
//
// The pipeline is pure and stateless across cycles:
//
//	Filter     first MaxEntries entries, published within RecencyWindow of now
//	Classify   case-folded substring match; outage words win over degradation
//	Aggregate  outage ≥ 4 → CRITICAL, else degradation ≥ 3 → WARNING, else NORMAL
//
// Evaluate runs all three for one target and returns the counts alongside the
// result. Fallback is the UNKNOWN result used when a target's feed could not
// be obtained.
//
// Keyword matching is plain substring containment: "down" also matches
// "download".
package compute
