package feeds

import "time"

const (
	DefaultItemLimit = 5
	defaultTimeout   = 30 * time.Second
	workerCount      = 5
)

type Config struct {
	URLs []string
	// items taken from the top of each feed
	ItemLimit int
	// fetch each article page and replace the summary with its readable text
	FullText bool
	Timeout  time.Duration
}

// outcome of polling every configured feed once
type Report struct {
	Feeds  int
	Items  int
	Errors []FeedError
}

type FeedError struct {
	URL string
	Err error
}

func (e FeedError) Error() string {
	return e.URL + ": " + e.Err.Error()
}

func (e FeedError) Unwrap() error {
	return e.Err
}
