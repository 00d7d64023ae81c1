package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		metric string
		global map[string]string
		local  map[string]string
		want   string
	}{
		{name: "plain", metric: "session.login", want: "session.login:1|c"},
		{name: "prefixed", prefix: "paycom", metric: "session.login", want: "paycom.session.login:1|c"},
		{name: "normalized", metric: " auth/login..result ", want: "auth_login.result:1|c"},
		{name: "empty name", metric: "  ", want: ""},
		{
			name:   "tags merged and sorted",
			metric: "m",
			global: map[string]string{"env": "prod", " app ": " paycom "},
			local:  map[string]string{"result": " ok ", "": "dropped", "env": "dev"},
			want:   "m:1|c|#app:paycom,env:dev,result:ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Line(tt.prefix, tt.metric, "1", "c", tt.global, tt.local))
		})
	}
}

func TestNewClient_DisabledWithoutAddress(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Enabled: true, Address: "   "})
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	c.Count("dropped", 1, nil)
	assert.NoError(t, c.Close())
}

func TestNewClient_DialError(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Enabled: true, Address: "bad address"})
	assert.ErrorContains(t, err, "statsd dial")
}

func TestClient_WritesLines(t *testing.T) {
	t.Parallel()

	local, peer := net.Pipe()
	defer peer.Close()

	c := &Client{prefix: "paycom", globalTags: map[string]string{"env": "test"}, conn: local}
	require.True(t, c.Enabled())

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 256)
		n, _ := peer.Read(buf)
		got <- string(buf[:n])
	}()

	c.Count("session.logout", 1, map[string]string{"result": "success"})
	assert.Equal(t, "paycom.session.logout:1|c|#env:test,result:success", <-got)

	require.NoError(t, c.Close())
	assert.False(t, c.Enabled())
	require.NoError(t, c.Close())
}

func TestClient_NilIsSilent(t *testing.T) {
	t.Parallel()

	var c *Client
	c.Count("x", 1, nil)
	c.Gauge("x", 1, nil)
	c.Timing("x", time.Second, nil)
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Close())
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.Count("a", 2, map[string]string{"k": "v"})
	r.Gauge("b", 1.5, nil)
	r.Timing("c", time.Second, nil)
	r.Count("", 1, nil)

	assert.Equal(t, []string{"a:2|c|#k:v", "b:1.5|g", "c:<d>|ms"}, r.Lines())
}
