// Package validate measures how complete a lookup was by comparing the
// scraped ids with the ids of the documents the lookup returned.
package validate
