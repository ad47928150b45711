package config

import (
	"fmt"
	"os"
	"strings"
)

// secretsDir is where Docker secrets are mounted.
var secretsDir = "/run/secrets"

// ReadSecret reads a secret from the Docker secrets directory and falls back
// to the upper-cased environment variable of the same name (db_password ->
// DB_PASSWORD) for local runs.
func ReadSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("%s/%s", secretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err == nil {
		secret := strings.TrimSpace(string(secretBytes))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", filePath)
		}
		return secret, nil
	}

	envName := strings.ToUpper(secretName)
	if value := strings.TrimSpace(os.Getenv(envName)); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("failed to read secret file %s and %s is not set: %w", filePath, envName, err)
}
