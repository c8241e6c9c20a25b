package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/finanse/internal/flagx"
)

// JsonConfig is the intermediate DTO used only for reading JSON
// configuration files. Duration fields are plain integers in minutes;
// after unmarshalling they are copied into the runtime Config.
type JsonConfig struct {
	DatabaseDSN                 string `json:"database_dsn"`
	RemoteBackend               string `json:"remote_backend"`
	RemoteDSN                   string `json:"remote_dsn"`
	SecretKey                   string `json:"secret_key"`
	SessionTokenValidityMinutes int    `json:"session_token_validity_minutes"`
	S3RootUser                  string `json:"s3_root_user"`
	S3RootPassword              string `json:"s3_root_password"`
	S3Bucket                    string `json:"s3_bucket"`
	S3Region                    string `json:"s3_region"`
	S3BaseEndpoint              string `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. Only fields present
// in the file (non-zero after unmarshalling) override the defaults. If the
// file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.RemoteBackend != "" {
		config.RemoteBackend = c.RemoteBackend
	}
	if c.RemoteDSN != "" {
		config.RemoteDSN = c.RemoteDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SessionTokenValidityMinutes != 0 {
		config.SessionTokenValidityDuration = time.Duration(c.SessionTokenValidityMinutes) * time.Minute
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
}
