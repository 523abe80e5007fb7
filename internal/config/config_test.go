package config

import (
	"os"
	"testing"
	"time"

	"http_relay/internal/http/header"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetenv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		val      string
		def      string
		expected string
	}{
		{
			name:     "returns existing env",
			key:      "TEST_ENV_EXIST",
			val:      "value",
			def:      "default",
			expected: "value",
		},
		{
			name:     "returns default when env missing",
			key:      "TEST_ENV_MISSING",
			val:      "",
			def:      "default",
			expected: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.val != "" {
				t.Setenv(tt.key, tt.val)
			} else {
				os.Unsetenv(tt.key)
			}
			assert.Equal(t, tt.expected, getenv(tt.key, tt.def))
		})
	}
}

func TestGetenvBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		val      string
		def      bool
		expected bool
	}{
		{"returns true when env is true", "TEST_BOOL_TRUE", "true", false, true},
		{"returns false when env is false", "TEST_BOOL_FALSE", "false", true, false},
		{"returns default when env missing", "TEST_BOOL_MISSING", "", true, true},
		{"returns false when env is not true", "TEST_BOOL_INVALID", "yes", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.val != "" {
				t.Setenv(tt.key, tt.val)
			} else {
				os.Unsetenv(tt.key)
			}
			assert.Equal(t, tt.expected, getenvBool(tt.key, tt.def))
		})
	}
}

func TestGetenvDuration(t *testing.T) {
	tests := []struct {
		name      string
		val       string
		def       time.Duration
		expected  time.Duration
		expectErr bool
	}{
		{"valid", "1500ms", time.Second, 1500 * time.Millisecond, false},
		{"default", "", 3 * time.Second, 3 * time.Second, false},
		{"zero", "0s", time.Second, 0, false},
		{"negative", "-1s", time.Second, 0, true},
		{"garbage", "soon", time.Second, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.val != "" {
				t.Setenv("TEST_DURATION", tt.val)
			} else {
				os.Unsetenv("TEST_DURATION")
			}
			d, err := getenvDuration("TEST_DURATION", tt.def)
			if tt.expectErr {
				assert.ErrorContains(t, err, "invalid TEST_DURATION value")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name      string
		val       string
		expected  []header.Field
		expectErr bool
	}{
		{"empty", "", nil, false},
		{"single", "Connection: close", []header.Field{{Name: "Connection", Value: "close"}}, false},
		{
			name: "ordered list",
			val:  "X-B: 2|X-A: 1| |Accept: */*",
			expected: []header.Field{
				{Name: "X-B", Value: "2"},
				{Name: "X-A", Value: "1"},
				{Name: "Accept", Value: "*/*"},
			},
		},
		{"entry without colon", "Connection close", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.val != "" {
				t.Setenv("REQUEST_HEADERS", tt.val)
			} else {
				os.Unsetenv("REQUEST_HEADERS")
			}
			fields, err := parseHeaders()
			if tt.expectErr {
				assert.ErrorIs(t, err, header.ErrInvalidRequest)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, fields)
		})
	}
}

func TestParseBufferSize(t *testing.T) {
	tests := []struct {
		name   string
		val    string
		expect int
	}{
		{"valid size", "8192", 8192},
		{"default size", "", 32768},
		{"too small", "1024", 4096},
		{"too large", "2000000", 4096},
		{"invalid format", "abc", 4096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.val != "" {
				t.Setenv("BUFFER_SIZE", tt.val)
			} else {
				os.Unsetenv("BUFFER_SIZE")
			}
			assert.Equal(t, tt.expect, parseBufferSize())
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		envs      map[string]string
		expectErr bool
	}{
		{
			name:      "empty environment",
			envs:      map[string]string{},
			expectErr: false,
		},
		{
			name:      "invalid log level",
			envs:      map[string]string{"LOG_LEVEL": "chatty"},
			expectErr: true,
		},
		{
			name:      "invalid dial timeout",
			envs:      map[string]string{"DIAL_TIMEOUT": "later"},
			expectErr: true,
		},
		{
			name:      "invalid handshake timeout",
			envs:      map[string]string{"HANDSHAKE_TIMEOUT": "-5s"},
			expectErr: true,
		},
		{
			name:      "invalid headers",
			envs:      map[string]string{"REQUEST_HEADERS": "nocolon"},
			expectErr: true,
		},
		{
			name:      "ssh host without user",
			envs:      map[string]string{"SSH_HOST": "bastion:22"},
			expectErr: true,
		},
		{
			name: "ssh host with user",
			envs: map[string]string{
				"SSH_HOST": "bastion:22",
				"SSH_USER": "relay",
			},
			expectErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}
			cfg, err := parse()
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, cfg)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	os.Clearenv()

	cfg, err := parse()
	require.NoError(t, err)

	assert.Equal(t, "GET", cfg.RequestMethod())
	assert.Equal(t, "/", cfg.RequestURI())
	assert.Empty(t, cfg.RequestHeaders())
	assert.False(t, cfg.AddHostHeader())
	assert.Equal(t, "", cfg.UserAgent())
	assert.Equal(t, "info", cfg.LogLevel())
	assert.Equal(t, 32768, cfg.BufferSize())
	assert.Equal(t, 10*time.Second, cfg.DialTimeout())
	assert.Equal(t, time.Duration(0), cfg.HandshakeTimeout())
	assert.False(t, cfg.StatusReport())
	assert.False(t, cfg.NoColor())
	assert.Equal(t, "", cfg.SSHHost())
	assert.Equal(t, "certs/id_ed25519", cfg.SSHKeyLoc())
}

func TestGetters(t *testing.T) {
	envs := map[string]string{
		"REQUEST_METHOD":    "POST",
		"REQUEST_URI":       "http://example.com/upload",
		"REQUEST_HEADERS":   "Connection: close|Content-Type: text/plain",
		"ADD_HOST_HEADER":   "true",
		"USER_AGENT":        "http_relay/test",
		"LOG_LEVEL":         "DEBUG",
		"BUFFER_SIZE":       "16384",
		"DIAL_TIMEOUT":      "3s",
		"HANDSHAKE_TIMEOUT": "30s",
		"STATUS_REPORT":     "true",
		"NO_COLOR":          "1",
		"SSH_HOST":          "bastion:2222",
		"SSH_USER":          "relay",
		"SSH_KEY_LOC":       "/tmp/key",
		"SSH_KNOWN_HOSTS":   "/tmp/known_hosts",
	}

	os.Clearenv()
	for k, v := range envs {
		t.Setenv(k, v)
	}

	cfg, err := parse()
	require.NoError(t, err)

	assert.Equal(t, "POST", cfg.RequestMethod())
	assert.Equal(t, "http://example.com/upload", cfg.RequestURI())
	assert.Equal(t, []header.Field{
		{Name: "Connection", Value: "close"},
		{Name: "Content-Type", Value: "text/plain"},
	}, cfg.RequestHeaders())
	assert.True(t, cfg.AddHostHeader())
	assert.Equal(t, "http_relay/test", cfg.UserAgent())
	assert.Equal(t, "debug", cfg.LogLevel())
	assert.Equal(t, 16384, cfg.BufferSize())
	assert.Equal(t, 3*time.Second, cfg.DialTimeout())
	assert.Equal(t, 30*time.Second, cfg.HandshakeTimeout())
	assert.True(t, cfg.StatusReport())
	assert.True(t, cfg.NoColor())
	assert.Equal(t, "bastion:2222", cfg.SSHHost())
	assert.Equal(t, "relay", cfg.SSHUser())
	assert.Equal(t, "/tmp/key", cfg.SSHKeyLoc())
	assert.Equal(t, "/tmp/known_hosts", cfg.SSHKnownHosts())
}

func TestMustLoad(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		os.Clearenv()
		cfg, err := MustLoad()
		assert.NoError(t, err)
		assert.NotNil(t, cfg)
	})

	t.Run("reads .env file", func(t *testing.T) {
		os.Clearenv()
		chdir(t, t.TempDir())
		require.NoError(t, os.WriteFile(".env", []byte("REQUEST_METHOD=PUT\nREQUEST_HEADERS=\"X-A: 1|X-B: 2\"\n"), 0600))

		cfg, err := MustLoad()
		require.NoError(t, err)
		assert.Equal(t, "PUT", cfg.RequestMethod())
		assert.Len(t, cfg.RequestHeaders(), 2)
	})

	t.Run("loadEnvFile error", func(t *testing.T) {
		chdir(t, t.TempDir())
		require.NoError(t, os.Mkdir(".env", 0755))

		cfg, err := MustLoad()
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("parse error", func(t *testing.T) {
		os.Clearenv()
		t.Setenv("LOG_LEVEL", "loud")
		cfg, err := MustLoad()
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
