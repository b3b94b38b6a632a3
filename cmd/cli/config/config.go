package config

import (
	"os"
	"path/filepath"
)

const defaultAPIURL = "http://localhost:8080"

const tokenFileName = ".formations_token"

// APIURL returns the base URL for the Formations API.
// It can be overridden with the FORMATIONS_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("FORMATIONS_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// SaveToken stores the editor's JWT token in the home directory for
// subsequent CLI commands.
func SaveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0600)
}

// LoadToken reads the locally stored JWT token.
func LoadToken() (string, error) {
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RemoveToken deletes the locally stored token, if any.
func RemoveToken() error {
	err := os.Remove(tokenPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func tokenPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}
