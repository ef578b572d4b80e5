package config

import (
	"flag"
	"os"
)

// parses CLI flags for the poll subcommand
func ParsePollFlags(defaults *Config) Flags {
	args := os.Args[2:]

	fs := flag.NewFlagSet("poll", flag.ExitOnError)
	limit := fs.Int("limit", defaults.FeedItemLimit, "max items ingested per feed")
	fullText := fs.Bool("full-text", defaults.FeedFullText, "fetch full article text with readability")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{Limit: *limit, FullText: *fullText}
}

// parses CLI flags for the file subcommand
func ParseFileFlags() Flags {
	args := os.Args[2:]

	fs := flag.NewFlagSet("file", flag.ExitOnError)
	path := fs.String("path", "./resources/articles.json", "path to a JSON array of articles")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{Path: *path}
}
