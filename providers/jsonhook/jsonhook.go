// Package jsonhook implements the generic JSON webhook provider behind
// the json:// and jsons:// schemes. The notification is POSTed as a
// small versioned JSON document to the URL's host and path.
package jsonhook

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kart-io/notifycast/pkg/errors"
	"github.com/kart-io/notifycast/pkg/message"
	"github.com/kart-io/notifycast/pkg/provider"
)

// PayloadVersion identifies the webhook payload schema.
const PayloadVersion = "1.0"

// Payload is the JSON document POSTed to the webhook.
type Payload struct {
	Version string `json:"version"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Spec describes the json:// URL dialect.
func Spec() *provider.Spec {
	return &provider.Spec{
		Name:           "json",
		Aliases:        []string{"json", "jsons"},
		SecureAliases:  []string{"jsons"},
		RequiredFields: []string{provider.FieldHost},
	}
}

// Adapter delivers notifications to JSON webhooks.
type Adapter struct {
	client *http.Client
}

// New creates the webhook adapter. A nil client gets a default with a
// 30 second timeout.
func New(client *http.Client) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Adapter{client: client}
}

// Name returns the canonical provider name.
func (a *Adapter) Name() string { return "json" }

// Send POSTs the payload to the webhook endpoint.
func (a *Adapter) Send(ctx context.Context, req *provider.Request, msg *message.Message) error {
	body, err := json.Marshal(Payload{
		Version: PayloadVersion,
		Title:   msg.Title,
		Message: msg.Body,
		Type:    string(msg.Type),
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeAdapterFailure, "encode webhook payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(req), bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.CodeAdapterFailure, "build webhook request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", "notifycast")
	if req.User != "" {
		httpReq.SetBasicAuth(req.User, req.Password)
	}

	resp, err := a.do(req, httpReq)
	if err != nil {
		return errors.Wrap(err, errors.CodeAdapterFailure, "webhook request failed").WithScheme(req.Scheme)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Newf(errors.CodeAdapterFailure,
			"webhook returned %s", resp.Status).WithScheme(req.Scheme)
	}
	return nil
}

// do dispatches the request, swapping in a non-verifying transport when
// the URL asked for verify=no.
func (a *Adapter) do(req *provider.Request, httpReq *http.Request) (*http.Response, error) {
	if req.VerifyTLS || !req.Secure {
		return a.client.Do(httpReq)
	}
	insecure := &http.Client{
		Timeout: a.client.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	return insecure.Do(httpReq)
}

func endpoint(req *provider.Request) string {
	scheme := "http"
	if req.Secure {
		scheme = "https"
	}
	host := req.Host
	if req.Port > 0 {
		host = fmt.Sprintf("%s:%d", req.Host, req.Port)
	}
	path := ""
	if len(req.Path) > 0 {
		escaped := make([]string, len(req.Path))
		for i, seg := range req.Path {
			escaped[i] = url.PathEscape(seg)
		}
		path = "/" + strings.Join(escaped, "/")
	}
	return scheme + "://" + host + path
}
