package cli

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/quickpad-app/quickpad/internal/backup"
)

// Config keys; each is also settable via a QUICKPAD_* environment
// variable (e.g. data_dir -> QUICKPAD_DATA_DIR).
const (
	cfgKeyDataDir    = "data_dir"
	cfgKeyArchiveDir = "archive_dir"
	cfgKeyAccessKey  = "s3_access_key"
	cfgKeySecretKey  = "s3_secret_key"
	cfgKeyBucket     = "s3_bucket"
	cfgKeyRegion     = "s3_region"
	cfgKeyEndpoint   = "s3_endpoint"
)

// loadConfig builds the backup configuration from defaults, an optional
// YAML file, and QUICKPAD_* environment variables, in that precedence
// order. A missing config file is only an error when one was named
// explicitly.
func loadConfig(configFile string) (*backup.Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyDataDir, ".")
	v.SetDefault(cfgKeyArchiveDir, ".")
	v.SetDefault(cfgKeyRegion, "us-east-1")

	v.SetEnvPrefix("QUICKPAD")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &backup.Config{
		DataDir:        v.GetString(cfgKeyDataDir),
		ArchiveDir:     v.GetString(cfgKeyArchiveDir),
		S3AccessKey:    v.GetString(cfgKeyAccessKey),
		S3SecretKey:    v.GetString(cfgKeySecretKey),
		S3Bucket:       v.GetString(cfgKeyBucket),
		S3Region:       v.GetString(cfgKeyRegion),
		S3BaseEndpoint: v.GetString(cfgKeyEndpoint),
	}

	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3_bucket is required (set QUICKPAD_S3_BUCKET or the config file)")
	}

	return cfg, nil
}
