package config

import (
	"fmt"
	"http_relay/internal/http/header"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

type config struct {
	requestMethod  string
	requestURI     string
	requestHeaders []header.Field
	addHostHeader  bool
	userAgent      string

	logLevel   string
	bufferSize int

	dialTimeout      time.Duration
	handshakeTimeout time.Duration

	statusReport bool
	noColor      bool

	sshHost       string
	sshUser       string
	sshKeyLoc     string
	sshKnownHosts string
}

func parse() (*config, error) {
	requestMethod := getenv("REQUEST_METHOD", header.DefaultMethod)
	requestURI := getenv("REQUEST_URI", header.DefaultPath)

	requestHeaders, err := parseHeaders()
	if err != nil {
		return nil, err
	}

	addHostHeader := getenvBool("ADD_HOST_HEADER", false)
	userAgent := getenv("USER_AGENT", "")

	logLevel := strings.ToLower(getenv("LOG_LEVEL", "info"))
	if _, err = zapcore.ParseLevel(logLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL value: %w", err)
	}

	bufferSize := parseBufferSize()

	dialTimeout, err := getenvDuration("DIAL_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	handshakeTimeout, err := getenvDuration("HANDSHAKE_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	statusReport := getenvBool("STATUS_REPORT", false)
	noColor := os.Getenv("NO_COLOR") != ""

	sshHost := getenv("SSH_HOST", "")
	sshUser := getenv("SSH_USER", "")
	if sshHost != "" && sshUser == "" {
		return nil, fmt.Errorf("SSH_USER is required when SSH_HOST is set")
	}
	sshKeyLoc := getenv("SSH_KEY_LOC", "certs/id_ed25519")
	sshKnownHosts := getenv("SSH_KNOWN_HOSTS", "")

	return &config{
		requestMethod:    requestMethod,
		requestURI:       requestURI,
		requestHeaders:   requestHeaders,
		addHostHeader:    addHostHeader,
		userAgent:        userAgent,
		logLevel:         logLevel,
		bufferSize:       bufferSize,
		dialTimeout:      dialTimeout,
		handshakeTimeout: handshakeTimeout,
		statusReport:     statusReport,
		noColor:          noColor,
		sshHost:          sshHost,
		sshUser:          sshUser,
		sshKeyLoc:        sshKeyLoc,
		sshKnownHosts:    sshKnownHosts,
	}, nil
}

func loadEnvFile() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}

// parseHeaders reads REQUEST_HEADERS as "Name: value" pairs separated by '|'.
func parseHeaders() ([]header.Field, error) {
	raw := getenv("REQUEST_HEADERS", "")
	if raw == "" {
		return nil, nil
	}

	var fields []header.Field
	for _, part := range strings.Split(raw, "|") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		field, err := header.ParseField(part)
		if err != nil {
			return nil, fmt.Errorf("invalid REQUEST_HEADERS entry: %w", err)
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func parseBufferSize() int {
	raw := getenv("BUFFER_SIZE", "32768")
	size, err := strconv.Atoi(raw)
	if err != nil || size < 4096 || size > 1048576 {
		log.Println("Invalid BUFFER_SIZE, falling back to 4096")
		return 4096
	}
	return size
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val == "true"
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return def, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s value %q", key, val)
	}
	return d, nil
}
