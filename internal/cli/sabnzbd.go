package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kart-io/notifycast/pkg/descriptor"
	"github.com/kart-io/notifycast/pkg/message"
)

// sabNotification maps a SABnzbd notification type token onto a default
// title and notification type.
type sabNotification struct {
	Title string
	Type  message.Type
}

// sabTypes is the SABnzbd notification type table.
var sabTypes = map[string]sabNotification{
	"startup":      {"Startup/Shutdown", message.TypeInfo},
	"pause_resume": {"Pause/Resume", message.TypeInfo},
	"download":     {"Added NZB", message.TypeInfo},
	"pp":           {"Post-Processing Started", message.TypeInfo},
	"complete":     {"Job Finished", message.TypeSuccess},
	"failed":       {"Job Failed", message.TypeFailure},
	"warning":      {"Warning", message.TypeWarning},
	"error":        {"Error", message.TypeFailure},
	"disk_full":    {"Disk Full", message.TypeWarning},
	"queue_done":   {"Queue Finished", message.TypeInfo},
	"new_login":    {"User Logged In", message.TypeInfo},
	"other":        {"Other Messages", message.TypeInfo},
}

// sabParametersEnv, when set by the SABnzbd host, overrides the
// positional URL arguments.
const sabParametersEnv = "SAB_NOTIFICATION_PARAMETERS"

var sabnzbdCmd = &cobra.Command{
	Use:   "sabnzbd <type> <title> <body> [url...]",
	Short: "SABnzbd notification script entry point",
	Long: `Bridges SABnzbd's notification script interface onto notifycast.
SABnzbd invokes the script with the notification type token, a title, a
body, and the service URLs to notify. An empty title falls back to the
type's description. The ` + sabParametersEnv + ` environment variable, when
set by SABnzbd, overrides the positional URL list.`,
	Args: cobra.MinimumNArgs(3),
	RunE: runSabnzbd,
}

func runSabnzbd(cmd *cobra.Command, args []string) error {
	typeToken := strings.ToLower(strings.TrimSpace(args[0]))
	entry, ok := sabTypes[typeToken]
	if !ok {
		return fmt.Errorf("unknown notification type %q (expected one of %s)",
			args[0], strings.Join(sabTypeTokens(), ", "))
	}

	title := strings.TrimSpace(args[1])
	if title == "" {
		title = entry.Title
	}
	body := args[2]

	urls := expandServers(args[3:])
	if env := os.Getenv(sabParametersEnv); env != "" {
		urls = descriptor.SplitList(env)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no service URLs given; pass them as arguments or via %s", sabParametersEnv)
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	msg := message.New(title, body).WithType(entry.Type)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return app.dispatch(ctx, msg, urls)
}

func sabTypeTokens() []string {
	tokens := make([]string, 0, len(sabTypes))
	for token := range sabTypes {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
