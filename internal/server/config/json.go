package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/boulin/eventverse/internal/flagx"
	"github.com/boulin/eventverse/internal/timex"
)

// JsonConfig is an intermediate DTO for reading JSON configuration files.
// Durations accept both "1s" strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	EndpointAddrHealth           string         `json:"endpoint_addr_health"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	OrganizerCode                string         `json:"organizer_code"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	S3PublicURL                  string         `json:"s3_public_url"`
	CoverUploadValidity          timex.Duration `json:"cover_upload_validity"`
	RedisAddr                    string         `json:"redis_addr"`
	CacheTTL                     timex.Duration `json:"cache_ttl"`
	Development                  *bool          `json:"development"`
}

// parseJson loads the file named by -c or -config into config. Only the
// values present in the file override. Unreadable or invalid files panic.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	for dst, v := range map[*string]string{
		&config.EndpointAddrHTTP:   c.EndpointAddrHTTP,
		&config.EndpointAddrHealth: c.EndpointAddrHealth,
		&config.DatabaseDSN:        c.DatabaseDSN,
		&config.SecretKey:          c.SecretKey,
		&config.OrganizerCode:      c.OrganizerCode,
		&config.S3RootUser:         c.S3RootUser,
		&config.S3RootPassword:     c.S3RootPassword,
		&config.S3Bucket:           c.S3Bucket,
		&config.S3Region:           c.S3Region,
		&config.S3BaseEndpoint:     c.S3BaseEndpoint,
		&config.S3PublicURL:        c.S3PublicURL,
		&config.RedisAddr:          c.RedisAddr,
	} {
		if v != "" {
			*dst = v
		}
	}

	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&config.CoverUploadValidity, c.CoverUploadValidity)
	setDuration(&config.CacheTTL, c.CacheTTL)

	if c.Development != nil {
		config.Development = *c.Development
	}
}

func setDuration(dst *time.Duration, d timex.Duration) {
	if d.Duration > 0 {
		*dst = d.Duration
	}
}
