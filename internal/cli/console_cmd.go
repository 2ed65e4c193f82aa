package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/neutroai/neutro/internal/config"
	"github.com/neutroai/neutro/internal/domain"
	"github.com/neutroai/neutro/internal/hooks"
	"github.com/neutroai/neutro/internal/library"
	"github.com/neutroai/neutro/internal/logging"
	"github.com/neutroai/neutro/internal/workspace"
	"github.com/spf13/cobra"
)

const consoleHelp = "/name <text>  /desc <text>  /set <field> <value>  /use <agent-id>  /create  /reset  /id  /quit  //text sends /text"

var errUnknownCommand = errors.New("unknown command")

func newConsoleCmd() *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Open the interactive builder and test console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			restoreLogs, err := redirectLogs(cfg)
			if err != nil {
				return err
			}
			defer restoreLogs()

			updates, err := flags.updates()
			if err != nil {
				return err
			}

			db, err := openLibrary(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			agents, err := db.List(cmd.Context(), library.Filter{})
			if err != nil {
				return err
			}

			hookMgr := hooks.NewManager(log)
			logActivity(hookMgr)
			ws := newWorkspace(cfg, hookMgr)
			if err := ws.Apply(updates); err != nil {
				return err
			}

			p := tea.NewProgram(newConsoleModel(cmd.Context(), ws, agents))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("console UI error: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// redirectLogs sends logging to logs/console.log so it cannot draw over
// the terminal UI. The returned func puts the previous logger back and
// closes the file.
func redirectLogs(cfg config.Config) (func(), error) {
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(paths.Logs, "console.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening console log: %w", err)
	}
	level := logLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	prev := log
	log = logging.NewWithOptions(logging.Options{Level: level, Style: "json", Out: f})
	return func() {
		log = prev
		f.Close()
	}, nil
}

// consoleModel is the bubbletea model for the three-pane builder.
type consoleModel struct {
	ctx     context.Context
	ws      *workspace.Workspace
	library []domain.LibraryAgent
	theme   Theme
	width   int

	notice   *domain.Notification
	err      error
	quitting bool
}

func newConsoleModel(ctx context.Context, ws *workspace.Workspace, agents []domain.LibraryAgent) consoleModel {
	return consoleModel{
		ctx:     ctx,
		ws:      ws,
		library: agents,
		theme:   defaultTheme,
		width:   120,
	}
}

func (m consoleModel) Init() tea.Cmd {
	return nil
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "backspace":
			in := m.ws.Input()
			if in != "" {
				_, size := utf8.DecodeLastRuneInString(in)
				m.ws.SetInput(in[:len(in)-size])
			}
		case "ctrl+u":
			m.ws.SetInput("")
		default:
			if msg.Text != "" {
				m.ws.SetInput(m.ws.Input() + msg.Text)
			}
		}
	}
	return m, nil
}

// submit sends the pending input, or runs it when it is a slash command.
// A leading "//" sends the rest as a message starting with "/". An unknown
// command stays in the input so it can be corrected.
func (m consoleModel) submit() (tea.Model, tea.Cmd) {
	line := m.ws.Input()
	if strings.HasPrefix(line, "//") {
		m.ws.SetInput(line[1:])
		line = ""
	}
	if !strings.HasPrefix(line, "/") {
		m.ws.Submit(m.ctx)
		return m, nil
	}

	m.notice, m.err = nil, nil
	quit := m.execute(line)
	if !errors.Is(m.err, errUnknownCommand) {
		m.ws.SetInput("")
	}
	if quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// execute runs a slash command and reports whether the console should exit.
func (m *consoleModel) execute(line string) bool {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "quit", "q":
		return true
	case "name":
		m.err = m.ws.UpdateField("name", arg)
	case "desc", "description":
		m.err = m.ws.UpdateField("description", arg)
	case "set":
		field, value, ok := strings.Cut(arg, " ")
		if !ok {
			m.err = fmt.Errorf("usage: /set <field> <value>")
			return false
		}
		m.err = m.ws.Apply([]workspace.Update{{Field: field, Value: strings.TrimSpace(value)}})
	case "create":
		n, _ := m.ws.Create(m.ctx)
		m.notice = &n
	case "reset":
		m.ws.Reset(m.ctx)
	case "id":
		m.ws.RegenerateSnippet()
	case "use":
		for _, a := range m.library {
			if a.ID == arg {
				m.ws.SelectLibraryAgent(m.ctx, a)
				return false
			}
		}
		m.err = fmt.Errorf("%w: %s", library.ErrNotFound, arg)
	default:
		m.err = fmt.Errorf("%w /%s (use //%s to send it as a message)", errUnknownCommand, name, name)
	}
	return false
}

func (m consoleModel) View() tea.View {
	return tea.NewView(m.render())
}

// render lays out builder, console and inspector side by side.
func (m consoleModel) render() string {
	if m.quitting {
		return m.theme.hintStyle().Render("Draft discarded.") + "\n"
	}

	paneWidth := max(30, m.width/3-2)
	pane := m.theme.paneStyle().Width(paneWidth)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		pane.Render(m.builderPane()),
		pane.Render(m.consolePane()),
		pane.Render(m.inspectorPane()),
	)

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(m.theme.errorStyle().Render("✗ "+m.err.Error()) + "\n")
	case m.notice != nil:
		b.WriteString(m.theme.notificationLine(*m.notice) + "\n")
	}
	b.WriteString(m.theme.hintStyle().Render(consoleHelp) + "\n")
	return b.String()
}

func (m consoleModel) builderPane() string {
	d := m.ws.Draft()
	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render("Agent Builder") + "\n\n")
	fmt.Fprintf(&b, "Name:        %s\n", d.Name)
	fmt.Fprintf(&b, "Description: %s\n", d.Description)
	fmt.Fprintf(&b, "Category:    %s\n", d.Category)
	if d.Created {
		b.WriteString(m.theme.successStyle().Render("Created") + "\n")
	}

	b.WriteString("\n" + m.theme.titleStyle().Render("Library") + "\n")
	selected := m.ws.SelectedAgent()
	for _, a := range m.library {
		mark := " "
		if a.ID == selected {
			mark = "›"
		}
		fmt.Fprintf(&b, "%s %-4s %s (%s)\n", mark, a.ID, a.Name, a.Role)
	}
	return b.String()
}

func (m consoleModel) consolePane() string {
	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render("Test Console") + "\n\n")

	transcript := m.ws.Transcript()
	if len(transcript) == 0 {
		b.WriteString(m.theme.hintStyle().Render("Send a message to test your agent.") + "\n")
	}
	name := m.ws.Draft().Name
	for _, e := range transcript {
		fmt.Fprintf(&b, "%s %s\n", m.theme.titleStyle().Render(speaker(name, e)+":"), e.Content)
	}

	fmt.Fprintf(&b, "\n> %s█\n", m.ws.Input())
	fmt.Fprintf(&b, "%s\n", m.theme.hintStyle().Render(fmt.Sprintf("~%d tokens", m.ws.Stats().EstimatedTokens)))
	return b.String()
}

func (m consoleModel) inspectorPane() string {
	stats := m.ws.Stats()
	in := m.ws.Inspector()

	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render("Inspector") + "\n\n")
	fmt.Fprintf(&b, "Active agents:   %d\n", stats.ActiveAgents)
	fmt.Fprintf(&b, "Conversations:   %d\n", stats.Conversations)
	fmt.Fprintf(&b, "Knowledge items: %d\n", stats.KnowledgeItems)
	fmt.Fprintf(&b, "API calls today: %d\n\n", stats.APICallsToday)

	fmt.Fprintf(&b, "Model:       %s\n", in.Model)
	fmt.Fprintf(&b, "Temperature: %.1f\n", in.Temperature)
	fmt.Fprintf(&b, "Max tokens:  %d\n", in.MaxResponseTokens)
	if len(in.Features) > 0 {
		fmt.Fprintf(&b, "Features:    %s\n", strings.Join(in.Features, ", "))
	}

	b.WriteString("\n" + m.theme.titleStyle().Render("API") + "\n")
	b.WriteString(m.ws.Snippet().Curl + "\n")
	return b.String()
}
