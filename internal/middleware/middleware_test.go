package middleware

import (
	"testing"

	"http_relay/internal/http/header"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRequestHeader struct {
	mock.Mock
}

func (m *mockRequestHeader) Value(key string) string {
	return m.Called(key).String(0)
}

func (m *mockRequestHeader) Add(key string, value string) {
	m.Called(key, value)
}

func (m *mockRequestHeader) Clone() header.RequestHeader {
	return m.Called().Get(0).(header.RequestHeader)
}

func (m *mockRequestHeader) Fields() []header.Field {
	return m.Called().Get(0).([]header.Field)
}

func (m *mockRequestHeader) Method() string {
	return m.Called().String(0)
}

func (m *mockRequestHeader) Path() string {
	return m.Called().String(0)
}

func (m *mockRequestHeader) Version() string {
	return m.Called().String(0)
}

func (m *mockRequestHeader) Validate() error {
	return m.Called().Error(0)
}

func (m *mockRequestHeader) Finalize() []byte {
	return m.Called().Get(0).([]byte)
}

func TestHostHeader_HandleRequest(t *testing.T) {
	tests := []struct {
		name        string
		existing    string
		path        string
		expectHost  string
		expectError bool
	}{
		{
			name:       "absolute target",
			path:       "http://example.com/index.html",
			expectHost: "example.com",
		},
		{
			name:       "absolute target with port",
			path:       "http://example.com:8080/",
			expectHost: "example.com:8080",
		},
		{
			name:       "ipv6 authority",
			path:       "http://[::1]:8080/x",
			expectHost: "[::1]:8080",
		},
		{
			name: "origin form target",
			path: "/index.html",
		},
		{
			name:     "host already present",
			existing: "other.example",
		},
		{
			name:        "unparsable target",
			path:        "http://[::1",
			expectError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reqHeader := new(mockRequestHeader)
			reqHeader.On("Value", "Host").Return(tc.existing)
			if tc.existing == "" {
				reqHeader.On("Path").Return(tc.path)
			}
			if tc.expectHost != "" {
				reqHeader.On("Add", "Host", tc.expectHost).Return()
			}

			err := NewHostHeader().HandleRequest(reqHeader)

			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			reqHeader.AssertExpectations(t)
			if tc.expectHost == "" {
				reqHeader.AssertNotCalled(t, "Add", "Host", mock.Anything)
			}
		})
	}
}

func TestUserAgent_HandleRequest(t *testing.T) {
	tests := []struct {
		name      string
		agent     string
		existing  string
		expectAdd bool
	}{
		{"adds agent", "http_relay/dev", "", true},
		{"keeps caller agent", "http_relay/dev", "curl/8", false},
		{"disabled", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reqHeader := new(mockRequestHeader)
			if tc.agent != "" {
				reqHeader.On("Value", "User-Agent").Return(tc.existing)
			}
			if tc.expectAdd {
				reqHeader.On("Add", "User-Agent", tc.agent).Return()
			}

			err := NewUserAgent(tc.agent).HandleRequest(reqHeader)
			assert.NoError(t, err)
			reqHeader.AssertExpectations(t)
		})
	}
}

func TestMiddlewaresOnRealRequest(t *testing.T) {
	req, err := header.NewRequest("GET", "http://example.com/", header.Field{Name: "Connection", Value: "close"})
	assert.NoError(t, err)

	for _, mw := range []RequestMiddleware{NewHostHeader(), NewUserAgent("http_relay/dev")} {
		assert.NoError(t, mw.HandleRequest(req))
	}

	assert.Equal(t, "GET http://example.com/ HTTP/1.1\r\nConnection: close\r\nHost: example.com\r\nUser-Agent: http_relay/dev\r\n\r\n", string(req.Finalize()))
}
