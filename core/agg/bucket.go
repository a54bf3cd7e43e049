// Package agg has aggregation logic for tracker issues.
package agg

import "github.com/jirametrics/jirametrics/schema"

// BucketIssues returns the issues that fall into the given priority bucket.
// Blocker and Critical match the priority name exactly; Others takes the rest.
func BucketIssues(issues []schema.Issue, priority schema.Priority) []schema.Issue {
	var out []schema.Issue
	for _, issue := range issues {
		if issue.Bucket() == priority {
			out = append(out, issue)
		}
	}
	return out
}

// CountBuckets counts the issues per priority bucket.
// Every issue lands in exactly one bucket, so the counts sum to len(issues).
func CountBuckets(issues []schema.Issue) map[schema.Priority]int {
	counts := make(map[schema.Priority]int, len(schema.Priorities))
	for _, p := range schema.Priorities {
		counts[p] = len(BucketIssues(issues, p))
	}
	return counts
}
