// Package main provides the entry point for the tweetcollector CLI.
//
// tweetcollector collects the tweets of a search query in monthly periods:
// several scrape runs are merged, the merged ids are hydrated through the
// statuses/lookup endpoint, and the result is validated against the scrape.
//
// Usage:
//
//	tweetcollector merge -o merged.csv run_0.csv run_1.csv
//	tweetcollector lookup merged.csv results.json errors.json
//	tweetcollector validate merged.csv results.json
//	tweetcollector dag run --ds 2019-01-01
//
// See --help for all available options.
package main

// main is the entry point for tweetcollector.
func main() {
	Execute()
}
