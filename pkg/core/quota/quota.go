package quota

import (
	"time"

	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/model"
	"github.com/bpamb/escala/pkg/db"
)

// DefaultMonthlyLimit is the number of leave days that may be scheduled per month
const DefaultMonthlyLimit = 60

// Calculate sums the leave days booked against a month.
//
// Previsto counts every segment whose request belongs to year and whose month label
// is month, dated or not. Marked counts only dated segments. Saldo is always
// limit minus previsto.
func Calculate(year int, month time.Month, limit int, requests []db.LeaveRequest, segments []db.LeaveSegment) model.Quota {
	requestYear := make(map[string]int, len(requests))
	for _, r := range requests {
		requestYear[r.ID] = r.Year
	}

	q := model.Quota{Year: year, Month: month, Limit: limit}
	for _, seg := range segments {
		segYear, ok := requestYear[seg.LeaveRequestID]
		if !ok {
			segYear = seg.Year
		}
		if segYear != year || !calendar.SameMonth(seg.Month, month) {
			continue
		}
		q.Previsto += seg.Days
		if seg.Confirmed() {
			q.Marked += seg.Days
		}
	}

	q.Saldo = q.Limit - q.Previsto
	q.IsOverLimit = q.Previsto > q.Limit
	return q
}
