// Package xbmc implements the Kodi/XBMC on-screen notification provider
// behind the xbmc://, xbmcs://, kodi:// and kodis:// schemes, using the
// JSON-RPC GUI.ShowNotification method.
package xbmc

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kart-io/notifycast/pkg/errors"
	"github.com/kart-io/notifycast/pkg/message"
	"github.com/kart-io/notifycast/pkg/provider"
)

const (
	// DefaultPort is the Kodi web server port.
	DefaultPort = 8080
	// DefaultDisplaySeconds is how long the notification stays on screen.
	DefaultDisplaySeconds = 12
	// bodyLines caps the message at what the on-screen popup can show.
	bodyLines = 2
)

// Spec describes the xbmc:// URL dialect.
func Spec() *provider.Spec {
	return &provider.Spec{
		Name:           "xbmc",
		Aliases:        []string{"xbmc", "xbmcs", "kodi", "kodis"},
		SecureAliases:  []string{"xbmcs", "kodis"},
		DefaultPort:    DefaultPort,
		RequiredFields: []string{provider.FieldHost},
	}
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	ID      int       `json:"id"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	DisplayTime int    `json:"displaytime"`
	Image       string `json:"image,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Adapter delivers on-screen notifications to a Kodi/XBMC instance.
type Adapter struct {
	client *http.Client
}

// New creates the adapter. A nil client gets a default with a 30 second
// timeout.
func New(client *http.Client) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Adapter{client: client}
}

// Name returns the canonical provider name.
func (a *Adapter) Name() string { return "xbmc" }

// Send issues the GUI.ShowNotification JSON-RPC call.
func (a *Adapter) Send(ctx context.Context, req *provider.Request, msg *message.Message) error {
	display := DefaultDisplaySeconds
	if v := req.Field("duration"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			display = n
		}
	}

	params := rpcParams{
		Title:       msg.Title,
		Message:     msg.FirstLines(bodyLines),
		DisplayTime: display * 1000,
	}
	if msg.IncludeImage && msg.ImageRef != "" {
		params.Image = msg.ImageRef
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "GUI.ShowNotification",
		ID:      1,
		Params:  params,
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeAdapterFailure, "encode rpc payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint(req), bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.CodeAdapterFailure, "build rpc request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.User != "" {
		httpReq.SetBasicAuth(req.User, req.Password)
	}

	resp, err := a.do(req, httpReq)
	if err != nil {
		return errors.Wrap(err, errors.CodeAdapterFailure, "rpc request failed").WithScheme(req.Scheme)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.New(errors.CodeAdapterFailure, "kodi rejected credentials").WithScheme(req.Scheme)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.CodeAdapterFailure,
			"kodi returned %s", resp.Status).WithScheme(req.Scheme)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return errors.Wrap(err, errors.CodeAdapterFailure, "decode rpc response")
	}
	if rpcResp.Error != nil {
		return errors.Newf(errors.CodeAdapterFailure,
			"rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message).WithScheme(req.Scheme)
	}
	return nil
}

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

func (a *Adapter) endpoint(req *provider.Request) string {
	scheme := "http"
	if req.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d/jsonrpc", scheme, req.Host, req.Port)
}
