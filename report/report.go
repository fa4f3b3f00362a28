// Package report builds the daily transaction report from the ledger.
// Rendering stops at HTML; delivery (mail, scheduling) is someone else's job.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/tradedesk/ledger"
)

// Stats summarizes one day of trading activity.
type Stats struct {
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	SuccessRate string  `json:"successRate"` // percentage, two decimals
	TotalVolume float64 `json:"totalVolume"` // Σ quantity × requested price over successes
}

// UserActivity groups one user's transactions for the day.
type UserActivity struct {
	UserID      string          `json:"userId"`
	Successful  []ledger.Record `json:"successful"`
	Failed      []ledger.Record `json:"failed"`
	TotalVolume float64         `json:"totalVolume"`
}

// Daily is the complete report for one calendar day.
type Daily struct {
	Date       time.Time       `json:"date"`
	Stats      Stats           `json:"stats"`
	Successful []ledger.Record `json:"successful"`
	Failed     []ledger.Record `json:"failed"`
	Users      []UserActivity  `json:"users"`
}

// BuildDaily queries the ledger for the given calendar day (server-local)
// and aggregates the result.
func BuildDaily(led ledger.Ledger, day time.Time) (Daily, error) {
	records, err := led.Query(ledger.Filter{Date: day})
	if err != nil {
		return Daily{}, fmt.Errorf("query transactions for report: %w", err)
	}

	d := Daily{Date: day}
	byUser := make(map[string]*UserActivity)

	for _, r := range records {
		ua := byUser[r.UserID]
		if ua == nil {
			ua = &UserActivity{UserID: r.UserID}
			byUser[r.UserID] = ua
		}

		switch r.Status {
		case ledger.StatusSuccess:
			d.Successful = append(d.Successful, r)
			ua.Successful = append(ua.Successful, r)
			ua.TotalVolume += float64(r.Quantity) * r.RequestedPrice
		case ledger.StatusFailed:
			d.Failed = append(d.Failed, r)
			ua.Failed = append(ua.Failed, r)
		}
	}

	d.Stats = Stats{
		Total:       len(records),
		Successful:  len(d.Successful),
		Failed:      len(d.Failed),
		SuccessRate: "0",
	}
	if d.Stats.Total > 0 {
		d.Stats.SuccessRate = fmt.Sprintf("%.2f", float64(d.Stats.Successful)/float64(d.Stats.Total)*100)
	}
	for _, r := range d.Successful {
		d.Stats.TotalVolume += float64(r.Quantity) * r.RequestedPrice
	}

	d.Users = make([]UserActivity, 0, len(byUser))
	for _, ua := range byUser {
		d.Users = append(d.Users, *ua)
	}
	sort.Slice(d.Users, func(i, j int) bool { return d.Users[i].UserID < d.Users[j].UserID })

	return d, nil
}
