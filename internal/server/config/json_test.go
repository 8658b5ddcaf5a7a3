package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = append([]string{"quickpad"}, args...)
}

func TestParseJson_NoFileFlag_KeepsDefaults(t *testing.T) {
	withArgs(t)

	var c Config
	c.LoadDefaults()
	assert.NoError(t, parseJson(&c))

	assert.Equal(t, ":8080", c.EndpointAddr)
}

func TestParseJson_OverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	body := `{
		"endpoint_addr": ":9999",
		"data_dir": "/srv/quickpad",
		"secret_key": "file-secret",
		"session_validity_duration": "2h",
		"max_upload_bytes": 1048576
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	withArgs(t, "-c", path)

	var c Config
	c.LoadDefaults()
	assert.NoError(t, parseJson(&c))

	assert.Equal(t, ":9999", c.EndpointAddr)
	assert.Equal(t, "/srv/quickpad", c.DataDir)
	assert.Equal(t, "file-secret", c.SecretKey)
	assert.Equal(t, 2*time.Hour, c.SessionValidityDuration)
	assert.Equal(t, int64(1<<20), c.MaxUploadBytes)
}

func TestParseJson_PartialFile_KeepsRemainingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	if err := os.WriteFile(path, []byte(`{"data_dir": "/data"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	withArgs(t, "-config", path)

	var c Config
	c.LoadDefaults()
	assert.NoError(t, parseJson(&c))

	assert.Equal(t, "/data", c.DataDir)
	assert.Equal(t, ":8080", c.EndpointAddr)
	assert.Equal(t, 24*time.Hour, c.SessionValidityDuration)
}

func TestParseJson_InvalidFile_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	withArgs(t, "-c", path)

	var c Config
	c.LoadDefaults()
	assert.Error(t, parseJson(&c))
}

func TestParseJson_MissingFile_ReturnsError(t *testing.T) {
	withArgs(t, "-c", filepath.Join(t.TempDir(), "absent.json"))

	var c Config
	c.LoadDefaults()
	assert.Error(t, parseJson(&c))
}
