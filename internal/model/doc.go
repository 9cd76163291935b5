// Package model defines the data types shared by the tweet collection stages:
// scrape records, lookup records and errors, validation reports, and the
// states of DAG task instances.
package model
