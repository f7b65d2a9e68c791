package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"safe-space/client"
	"safe-space/domain"
	"sync"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config is read from SAFESPACE_* variables.
type Config struct {
	ServerURL    string        `envconfig:"SERVER_URL" default:"http://localhost:5000"`
	Email        string        `envconfig:"EMAIL" required:"true"`
	Password     string        `envconfig:"PASSWORD" required:"true"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"3s"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"10s"`
	Colours      bool          `envconfig:"COLOURS" default:"true"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"WARN"`
}

const usage = `usage:
  client inbox              list conversations
  client users [role]       list the directory
  client chat <user id>     open a conversation, one line per message`

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run(args []string) (int, error) {
	var config Config
	if err := envconfig.Process("safespace", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if len(args) == 0 {
		return exitConfig, fmt.Errorf("missing command\n%s", usage)
	}
	color.Enable = config.Colours
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.NewHTTPClient(config.ServerURL, config.Timeout)
	session, err := api.Login(ctx, config.Email, config.Password)
	if err != nil {
		return exitRuntime, fmt.Errorf("login failed: %w", err)
	}
	fmt.Println(color.New(color.FgGreen).Render(fmt.Sprintf("Signed in as %s (%s)", session.User.Name, session.User.Role)))

	switch args[0] {
	case "inbox":
		return inbox(ctx, api)
	case "users":
		var role domain.Role
		if len(args) > 1 {
			role = domain.Role(args[1])
		}
		return users(ctx, api, role)
	case "chat":
		if len(args) < 2 {
			return exitConfig, fmt.Errorf("chat needs a user id\n%s", usage)
		}
		view := client.NewConversationView(log, api,
			client.WithPollInterval(config.PollInterval),
			client.WithErrorHandler(func(err error) {
				fmt.Println(color.New(color.FgRed).Render("poll failed: " + err.Error()))
			}),
			client.WithUpdateHandler(newPrinter(session.User.ID).print))
		return chat(ctx, view, args[1])
	}
	return exitConfig, fmt.Errorf("unknown command %q\n%s", args[0], usage)
}

func inbox(ctx context.Context, api client.ChatAPI) (int, error) {
	summaries, unread, err := client.NewInbox(api).Refresh(ctx)
	if err != nil {
		return exitRuntime, err
	}
	table := newTable("Counterpart", "Name", "Last message", "At", "Unread")
	for _, s := range summaries {
		name := "?"
		if s.Counterpart != nil {
			name = s.Counterpart.Name
		}
		table.Append([]string{
			s.CounterpartID, name, preview(s.LastMessage.Body),
			s.LastMessage.CreatedAt.Local().Format(time.DateTime), fmt.Sprint(s.UnreadCount),
		})
	}
	table.Render()
	fmt.Printf("%d unread\n", unread)
	return exitOK, nil
}

func users(ctx context.Context, api *client.HTTPClient, role domain.Role) (int, error) {
	profiles, err := api.ListProfiles(ctx, role)
	if err != nil {
		return exitRuntime, err
	}
	table := newTable("ID", "Name", "Role")
	for _, p := range profiles {
		table.Append([]string{p.ID, p.Name, string(p.Role)})
	}
	table.Render()
	return exitOK, nil
}

func chat(ctx context.Context, view *client.ConversationView, counterpartID string) (int, error) {
	if err := view.Open(ctx, counterpartID); err != nil {
		return exitConfig, err
	}
	defer view.Close()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			if _, err := view.Send(ctx, line); err != nil {
				fmt.Println(color.New(color.FgRed).Render("not sent: " + err.Error()))
			}
		}
	}
}

// printer writes each message of the thread once, in arrival order.
type printer struct {
	mu   sync.Mutex
	self string
	seen map[string]bool
}

func newPrinter(self string) *printer {
	return &printer{self: self, seen: make(map[string]bool)}
}

func (p *printer) print(thread []domain.ThreadMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range thread {
		if p.seen[m.ID] {
			continue
		}
		p.seen[m.ID] = true
		author := "them"
		style := color.New(color.FgCyan)
		if m.SenderID == p.self {
			author, style = "you", color.New(color.FgGray)
		}
		fmt.Printf("%s %s\n", style.Render(fmt.Sprintf("[%s] %s:", m.CreatedAt.Local().Format(time.TimeOnly), author)), m.Body)
	}
}

func preview(body string) string {
	runes := []rune(body)
	if len(runes) > 40 {
		return string(runes[:39]) + "…"
	}
	return body
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}
