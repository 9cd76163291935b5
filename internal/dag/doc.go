// Package dag defines the tweet collection workflow as a directed acyclic
// graph of shell tasks.
//
// Each task carries a bash command template in the scheduler's Jinja syntax.
// A template is rendered for one period: ds is the period start as
// YYYY-MM-DD and next_ds the start of the following period. The graph built
// by TweetCollector fans N scrape runs into a merge, then looks up the merged
// ids and validates the result:
//
//	get_old_tweets_0 ─┐
//	get_old_tweets_1 ─┼─> merge_get_old_tweets ─> lookup_tweets ─> validate_get_old_tweets
//	get_old_tweets_2 ─┘
//
// Templates are rendered with pongo2 with autoescaping disabled, since the
// output is a shell script and not HTML.
package dag
