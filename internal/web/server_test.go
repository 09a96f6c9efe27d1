package web

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/scicalc/internal/theme"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, *http.Client) {
	t.Helper()
	srv, err := NewServer(Config{
		Addr:          "127.0.0.1:0",
		SessionTTL:    time.Minute,
		SweepSchedule: "@every 1m",
		Theme:         theme.Dark,
		Logger:        zerolog.Nop(),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, ts, &http.Client{Jar: jar}
}

func get(t *testing.T, c *http.Client, u string) string {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func press(t *testing.T, c *http.Client, base string, keys ...string) string {
	t.Helper()
	var body string
	for _, k := range keys {
		resp, err := c.PostForm(base+"/press", url.Values{"key": {k}})
		require.NoError(t, err)
		b, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "redirect to the page")
		body = string(b)
	}
	return body
}

func TestNewServerValidates(t *testing.T) {
	_, err := NewServer(Config{SessionTTL: time.Minute})
	assert.Error(t, err)
	_, err = NewServer(Config{Addr: ":0"})
	assert.Error(t, err)
	_, err = NewServer(Config{Addr: ":0", SessionTTL: time.Minute, SweepSchedule: "often"})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	_, ts, c := newTestServer(t)
	body := get(t, c, ts.URL+"/healthz")
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestIndex(t *testing.T) {
	srv, ts, c := newTestServer(t)
	resp, err := c.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(b)
	assert.Contains(t, body, `value="sin"`)
	assert.Contains(t, body, `value="7"`)
	assert.Contains(t, body, "--background:#111827;")
	assert.Contains(t, body, ">Light<")

	get(t, c, ts.URL+"/")
	assert.Equal(t, 1, srv.Store().Len(), "the cookie names the same session")
}

func TestNotFound(t *testing.T) {
	_, ts, c := newTestServer(t)
	resp, err := c.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPress(t *testing.T) {
	_, ts, c := newTestServer(t)
	body := press(t, c, ts.URL, "2", "+", "3")
	assert.Contains(t, body, `<div id="buffer">2&#43;3</div>`)
	assert.Contains(t, body, `<div id="result">5</div>`)

	body = press(t, c, ts.URL, "=", "×", "2", "=")
	assert.Contains(t, body, `<div id="buffer">10</div>`)
	assert.Contains(t, body, `<div id="result">10</div>`)

	body = press(t, c, ts.URL, "C", "(", "=")
	assert.Contains(t, body, `<div id="result" class="error">Error</div>`)
}

func TestTheme(t *testing.T) {
	_, ts, c := newTestServer(t)
	resp, err := c.Post(ts.URL+"/theme", "application/x-www-form-urlencoded", strings.NewReader(""))
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(b), "--background:#f3f4f6;")
	assert.Contains(t, string(b), ">Dark<")
}

func dial(t *testing.T, ts *httptest.Server, c *http.Client) *websocket.Conn {
	t.Helper()
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	h := http.Header{}
	for _, ck := range c.Jar.Cookies(u) {
		h.Add("Cookie", ck.String())
	}
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", h)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, key string) View {
	t.Helper()
	require.NoError(t, conn.WriteJSON(keyMessage{Key: key}))
	var v View
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&v))
	return v
}

func TestWebSocket(t *testing.T) {
	_, ts, c := newTestServer(t)
	conn := dial(t, ts, c)

	v := send(t, conn, "")
	assert.Equal(t, View{State: "empty", Theme: "dark"}, v)

	send(t, conn, "3")
	v = send(t, conn, "!")
	assert.Equal(t, "3!", v.Buffer)
	assert.Equal(t, "6", v.Preview)
	assert.Equal(t, "editing", v.State)

	v = send(t, conn, "enter")
	assert.Equal(t, "6", v.Result)
	assert.Equal(t, "evaluated", v.State)

	v = send(t, conn, "*")
	assert.Equal(t, "6×", v.Buffer)
	assert.Equal(t, "", v.Preview)

	v = send(t, conn, "Theme")
	assert.Equal(t, "light", v.Theme)

	v = send(t, conn, "no such key")
	assert.Equal(t, "6×", v.Buffer)
}

func TestPressAndWebSocketShareSession(t *testing.T) {
	_, ts, c := newTestServer(t)
	press(t, c, ts.URL, "7", "×")
	conn := dial(t, ts, c)
	v := send(t, conn, "6")
	assert.Equal(t, "7×6", v.Buffer)
	assert.Equal(t, "42", v.Preview)

	body := press(t, c, ts.URL, "=")
	assert.Contains(t, body, `<div id="result">42</div>`)
}

func TestSweepRemovesIdle(t *testing.T) {
	srv, ts, c := newTestServer(t)
	get(t, c, ts.URL+"/")
	require.Equal(t, 1, srv.Store().Len())
	srv.store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	srv.sweep()
	assert.Equal(t, 0, srv.Store().Len())
}
