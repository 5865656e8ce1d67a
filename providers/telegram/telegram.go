// Package telegram implements the Telegram bot provider behind the
// tgram:// scheme. Bot API tokens carry a colon ("123456:ABC-DEF"),
// which a generic URL parser would read as a port, so the spec installs
// a normalize hook that moves the token into the userinfo position
// before parsing.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kart-io/notifycast/pkg/errors"
	"github.com/kart-io/notifycast/pkg/message"
	"github.com/kart-io/notifycast/pkg/provider"
)

// APIHost is the Telegram Bot API endpoint.
const APIHost = "api.telegram.org"

// Spec describes the tgram:// URL dialect: tgram://bot-token/chat-id.
func Spec() *provider.Spec {
	return &provider.Spec{
		Name:               "telegram",
		Aliases:            []string{"tgram", "telegram"},
		SecureDefault:      true,
		RecipientsFromPath: true,
		RequiredFields:     []string{provider.FieldUser, provider.FieldRecipients},
		FieldSynonyms: map[string]string{
			"to":      provider.FieldRecipients,
			"chat_id": provider.FieldRecipients,
			"token":   provider.FieldUser,
		},
		Normalize: normalizeURL,
	}
}

// normalizeURL rewrites tgram://TOKEN/... into tgram://TOKEN@host/...
// so the token's colon survives parsing as userinfo instead of being
// misread as a port. URLs that already carry userinfo pass through.
func normalizeURL(raw string) string {
	idx := strings.Index(raw, "://")
	if idx < 0 {
		return raw
	}
	prefix, rest := raw[:idx+3], raw[idx+3:]

	end := strings.IndexAny(rest, "/?")
	authority, remainder := rest, ""
	if end >= 0 {
		authority, remainder = rest[:end], rest[end:]
	}
	if authority == "" || strings.Contains(authority, "@") {
		return raw
	}
	return prefix + authority + "@" + APIHost + remainder
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Adapter delivers messages through the Telegram Bot API.
type Adapter struct {
	client *http.Client
	// baseURL overrides the API endpoint in tests.
	baseURL string
}

// New creates the adapter. A nil client gets a default with a 30 second
// timeout.
func New(client *http.Client) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Adapter{client: client}
}

// NewWithBaseURL creates an adapter pointed at an alternate API base,
// e.g. an httptest server.
func NewWithBaseURL(client *http.Client, baseURL string) *Adapter {
	a := New(client)
	a.baseURL = strings.TrimSuffix(baseURL, "/")
	return a
}

// Name returns the canonical provider name.
func (a *Adapter) Name() string { return "telegram" }

// Send posts one sendMessage call per chat ID. The first failing chat
// aborts the remainder, since a bad token fails them all identically.
func (a *Adapter) Send(ctx context.Context, req *provider.Request, msg *message.Message) error {
	token := botToken(req)
	if token == "" {
		return errors.New(errors.CodeMissingRequiredField, "tgram:// requires a bot token")
	}

	for _, chat := range req.Recipients {
		if err := a.sendOne(ctx, req, token, chat, msg); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) sendOne(ctx context.Context, req *provider.Request, token, chat string, msg *message.Message) error {
	payload := sendMessageRequest{
		ChatID: chat,
		Text:   renderText(msg),
	}
	if msg.Format == message.FormatHTML {
		payload.ParseMode = "HTML"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.CodeAdapterFailure, "encode telegram payload")
	}

	base := a.baseURL
	if base == "" {
		host := req.Host
		if host == "" {
			host = APIHost
		}
		base = "https://" + host
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", base, token)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.CodeAdapterFailure, "build telegram request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, errors.CodeAdapterFailure, "telegram request failed").WithScheme(req.Scheme)
	}
	defer func() { _ = resp.Body.Close() }()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return errors.Wrap(err, errors.CodeAdapterFailure, "decode telegram response")
	}
	if !apiResp.OK {
		detail := apiResp.Description
		if detail == "" {
			detail = resp.Status
		}
		return errors.Newf(errors.CodeAdapterFailure,
			"telegram rejected chat %s: %s", chat, detail).WithScheme(req.Scheme)
	}
	return nil
}

// botToken reassembles the token the normalize hook split into userinfo.
func botToken(req *provider.Request) string {
	if req.User == "" {
		return ""
	}
	if req.Password != "" {
		return req.User + ":" + req.Password
	}
	return req.User
}

func renderText(msg *message.Message) string {
	if msg.Title == "" {
		return msg.Body
	}
	if msg.Format == message.FormatHTML {
		return "<b>" + msg.Title + "</b>\r\n" + msg.Body
	}
	return msg.Title + "\r\n" + msg.Body
}
