// Package providers registers the built-in notification providers.
package providers

import (
	"net/http"

	"github.com/kart-io/notifycast/pkg/provider"
	"github.com/kart-io/notifycast/providers/email"
	"github.com/kart-io/notifycast/providers/jsonhook"
	"github.com/kart-io/notifycast/providers/telegram"
	"github.com/kart-io/notifycast/providers/xbmc"
)

// Options tune the built-in provider set.
type Options struct {
	// Client is shared by the HTTP-based adapters; nil selects their
	// defaults.
	Client *http.Client
	// MailShorthand extends the email provider's mail-domain relay
	// table. Entries here take precedence over the built-in ones.
	MailShorthand []provider.HostShorthand
}

// RegisterBuiltins registers every built-in provider on the registry.
func RegisterBuiltins(reg *provider.Registry, opts Options) error {
	if err := reg.Register(jsonhook.Spec(), jsonhook.New(opts.Client)); err != nil {
		return err
	}
	if err := reg.Register(xbmc.Spec(), xbmc.New(opts.Client)); err != nil {
		return err
	}
	if err := reg.Register(email.Spec(opts.MailShorthand...), email.New()); err != nil {
		return err
	}
	if err := reg.Register(telegram.Spec(), telegram.New(opts.Client)); err != nil {
		return err
	}
	return nil
}
