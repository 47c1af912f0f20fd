package pkg

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPIsLocal(t *testing.T) {
	cases := []struct {
		addr            string
		expectedIsLocal bool
	}{
		{addr: "83.12.53.65:2145", expectedIsLocal: false},
		{addr: "127.23.0.1:35325", expectedIsLocal: false},
		{addr: "127.0.0.1:35325", expectedIsLocal: true},
		{addr: "172.20.0.1:60102", expectedIsLocal: true},
		{addr: "172.19.0.1:42452", expectedIsLocal: true},
		{addr: "111.12.56.65:8080", expectedIsLocal: false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expectedIsLocal, IPIsLocal(tc.addr), tc.addr)
	}
}

func TestReadUserIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "83.12.53.65:2145"
	ip, err := ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "83.12.53.65", ip)

	req.Header.Set("X-Forwarded-For", "10.1.1.1, 83.12.53.65")
	ip, err = ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "10.1.1.1", ip)

	req.Header.Set("X-Real-Ip", "5.6.7.8")
	ip, err = ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "5.6.7.8", ip)

	req = httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "127.0.0.1:4444"
	ip, err = ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "localhost", ip)

	req.RemoteAddr = "not-an-ip"
	_, err = ReadUserIP(req)
	assert.Error(t, err)
}
