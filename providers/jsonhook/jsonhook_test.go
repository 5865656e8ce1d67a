package jsonhook

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

func TestSendPostsPayload(t *testing.T) {
	var got Payload
	var gotPath, gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	req := buildRequest(t, "json://alice:secret@"+host+"/hooks/build")

	msg := message.New("Build complete", "all 124 tests passed").WithType(message.TypeSuccess)
	err := New(nil).Send(context.Background(), req, msg)
	require.NoError(t, err)

	assert.Equal(t, "/hooks/build", gotPath)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, PayloadVersion, got.Version)
	assert.Equal(t, "Build complete", got.Title)
	assert.Equal(t, "all 124 tests passed", got.Message)
	assert.Equal(t, "success", got.Type)
}

func TestSendNoPathPostsToRoot(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	req := buildRequest(t, "json://"+host)

	require.NoError(t, New(nil).Send(context.Background(), req, message.New("t", "b")))
	assert.Equal(t, "/", gotPath)
}

func TestSendServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	req := buildRequest(t, "json://"+host+"/hook")

	err := New(nil).Send(context.Background(), req, message.New("t", "b"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeAdapterFailure, errors.CodeOf(err))
}

func TestSendUnreachableHost(t *testing.T) {
	req := buildRequest(t, "json://127.0.0.1:1/hook")

	err := New(nil).Send(context.Background(), req, message.New("t", "b"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeAdapterFailure, errors.CodeOf(err))
}

func TestSpecSecureAlias(t *testing.T) {
	spec := Spec()
	assert.True(t, spec.IsSecureAlias("jsons"))
	assert.False(t, spec.IsSecureAlias("json"))
}
