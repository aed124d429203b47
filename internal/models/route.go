package models

import "time"

const (
	LabelDirect = "Direct"
	LabelVia    = "Via "

	NoteDirect = "No connections"
)

type RouteOption struct {
	Label           string  `json:"route"`
	Price           float64 `json:"price"`
	Duration        string  `json:"duration"`
	ConnectionCount int     `json:"connections"`
	SavingsNote     string  `json:"details"`
}

func (r RouteOption) IsDirect() bool {
	return r.Label == LabelDirect
}

type SearchQuery struct {
	FromCity string `json:"fromCity"`
	ToCity   string `json:"toCity"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

func (q SearchQuery) Validate() error {
	if q.FromCity == "" || q.ToCity == "" || q.Date == "" || q.Time == "" {
		return ErrMissingSearchFields
	}
	return nil
}

type CacheEntry struct {
	Key        SearchQuery   `json:"key"`
	Payload    []RouteOption `json:"payload"`
	ComputedAt time.Time     `json:"computedAt"`
	TTL        time.Duration `json:"ttl"`
}

func (e CacheEntry) Expired(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.ComputedAt) >= e.TTL
}
