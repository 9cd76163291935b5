package config

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// CredentialsEnv names the environment variable holding the credentials path.
const CredentialsEnv = "TWITTER_CREDENTIALS"

// Credentials are the four OAuth 1.0a values for user-context API access.
type Credentials struct {
	ConsumerKey       string `json:"consumer_key"`
	ConsumerSecret    string `json:"consumer_secret"`
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"`
}

// missingField returns the JSON name of the first empty field, or "".
func (c Credentials) missingField() string {
	switch {
	case c.ConsumerKey == "":
		return "consumer_key"
	case c.ConsumerSecret == "":
		return "consumer_secret"
	case c.AccessToken == "":
		return "access_token"
	case c.AccessTokenSecret == "":
		return "access_token_secret"
	}
	return ""
}

// ResolveCredentialsPath returns the credentials file to use.
// An explicit path wins. Otherwise TWITTER_CREDENTIALS is read from the
// environment, after loading a .env file in the working directory if one
// exists. Variables already set in the environment are not overridden by .env.
func ResolveCredentialsPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if path := os.Getenv(CredentialsEnv); path != "" {
		return path, nil
	}
	return "", ErrNoCredentials
}

// LoadCredentials reads and checks the JSON credentials document at path.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided credentials path is intentional
	if err != nil {
		return Credentials{}, &CredentialsError{Path: path, Err: err}
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, &CredentialsError{Path: path, Err: err}
	}
	if field := creds.missingField(); field != "" {
		return Credentials{}, &CredentialsError{Path: path, Field: field}
	}
	return creds, nil
}
