package agg

import (
	"math"
	"time"

	"github.com/jirametrics/jirametrics/schema"
	"github.com/sirupsen/logrus"
)

// AverageAgeDays returns the average age of the issues in whole days, floored.
//
// In resolved mode only issues with a resolution date add (resolved - created)
// to the sum; in unresolved mode every issue adds (now - created). The sum is
// always divided by len(issues). Issues with unreadable dates are left out of
// the sum but still count in the divisor. An empty set yields 0.
func AverageAgeDays(issues []schema.Issue, resolved bool, now time.Time) int {
	if len(issues) == 0 {
		return 0
	}

	var total time.Duration
	for _, issue := range issues {
		if issue.DateErr != nil {
			logrus.WithError(issue.DateErr).WithField("issue", issue.Key).Debug("Skipping issue age")
			continue
		}
		switch {
		case resolved && issue.IsResolved():
			total += issue.Resolved.Sub(issue.Created)
		case !resolved:
			total += now.Sub(issue.Created)
		}
	}

	days := total.Hours() / 24 / float64(len(issues))
	return int(math.Floor(days))
}
