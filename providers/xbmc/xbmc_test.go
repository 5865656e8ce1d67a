package xbmc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/notifycast/pkg/descriptor"
	"github.com/kart-io/notifycast/pkg/errors"
	"github.com/kart-io/notifycast/pkg/message"
	"github.com/kart-io/notifycast/pkg/provider"
)

func buildRequest(t *testing.T, rawURL string) *provider.Request {
	t.Helper()
	desc, err := descriptor.Parse(rawURL)
	require.NoError(t, err)
	spec := Spec()
	req, err := provider.Build(desc, &provider.Binding{
		Scheme: desc.Scheme,
		Spec:   spec,
		Secure: spec.IsSecureAlias(desc.Scheme),
	})
	require.NoError(t, err)
	return req
}

func TestSendShowNotification(t *testing.T) {
	var got rpcRequest
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jsonrpc", r.URL.Path)
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"OK"}`))
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	req := buildRequest(t, "kodi://media:center@"+host)

	msg := message.New("Download complete", "Some.Show.S01E01")
	require.NoError(t, New(nil).Send(context.Background(), req, msg))

	assert.Equal(t, "2.0", got.JSONRPC)
	assert.Equal(t, "GUI.ShowNotification", got.Method)
	assert.Equal(t, "Download complete", got.Params.Title)
	assert.Equal(t, "Some.Show.S01E01", got.Params.Message)
	assert.Equal(t, DefaultDisplaySeconds*1000, got.Params.DisplayTime)
	assert.Equal(t, "media", gotUser)
	assert.Equal(t, "center", gotPass)
}

func TestSendTruncatesBodyToTwoLines(t *testing.T) {
	var got rpcRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"OK"}`))
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	req := buildRequest(t, "xbmc://"+host)

	msg := message.New("t", "line one\nline two\nline three")
	require.NoError(t, New(nil).Send(context.Background(), req, msg))

	assert.NotContains(t, got.Params.Message, "line three")
	assert.Contains(t, got.Params.Message, "line one")
	assert.Contains(t, got.Params.Message, "line two")
}

func TestSendCustomDuration(t *testing.T) {
	var got rpcRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"OK"}`))
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	req := buildRequest(t, "xbmc://"+host+"?duration=5")

	require.NoError(t, New(nil).Send(context.Background(), req, message.New("t", "b")))
	assert.Equal(t, 5000, got.Params.DisplayTime)
}

func TestSendIncludesImageWhenRequested(t *testing.T) {
	var got rpcRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"OK"}`))
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	req := buildRequest(t, "xbmc://"+host)

	msg := message.New("t", "b").WithImage("https://example.com/icon.png")
	require.NoError(t, New(nil).Send(context.Background(), req, msg))
	assert.Equal(t, "https://example.com/icon.png", got.Params.Image)
}

func TestSendRPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found"}}`))
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	req := buildRequest(t, "xbmc://"+host)

	err := New(nil).Send(context.Background(), req, message.New("t", "b"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeAdapterFailure, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "Method not found")
}

func TestSendBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	req := buildRequest(t, "xbmc://wrong:creds@"+host)

	err := New(nil).Send(context.Background(), req, message.New("t", "b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")
}

func TestSpecDefaults(t *testing.T) {
	req := buildRequest(t, "xbmc://htpc.local")
	assert.Equal(t, DefaultPort, req.Port)
	assert.False(t, req.Secure)

	req = buildRequest(t, "kodis://htpc.local")
	assert.True(t, req.Secure)
	assert.Equal(t, "xbmc", req.Provider)
}
