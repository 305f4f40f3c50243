package fetcher

import "time"

type FetchParam struct {
	URL string
}

type FetchResult struct {
	URL         string
	Body        []byte
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}
