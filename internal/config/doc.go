// Package config provides configuration structures and utilities for
// tweetcollector. It defines the DAG settings, the lookup settings,
// the configuration file format, and the resolution of API credentials.
package config
