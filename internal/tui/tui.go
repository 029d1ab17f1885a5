package tui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	tasksdk "tasktracker/sdk/go"
)

// Client is the subset of the API client the TUI drives.
type Client interface {
	ListTasks(ctx context.Context) ([]tasksdk.Task, error)
	CreateTask(ctx context.Context, id int, title string, done bool) (tasksdk.TaskResult, error)
	SetDone(ctx context.Context, id int, done bool) (tasksdk.TaskResult, error)
	DeleteTask(ctx context.Context, id int) (string, error)
}

const requestTimeout = 5 * time.Second

type inputMode int

const (
	modeBrowse inputMode = iota
	modeAddID
	modeAddTitle
)

type listItem struct {
	task tasksdk.Task
}

func (i listItem) Title() string       { return i.task.Title }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.task.Title }

type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	box := mutedStyle.Render(boxUnchecked)
	text := it.task.Title
	if it.task.Done {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	id := accentStyle.Render(fmt.Sprintf("#%d", it.task.ID))
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s %s", prefix, box, id, text)
}

type tasksLoadedMsg struct {
	tasks []tasksdk.Task
	err   error
}

type opDoneMsg struct {
	status string
	err    error
}

// Model is the bubbletea model for the task list.
type Model struct {
	client Client
	list   list.Model
	ti     textinput.Model
	mode   inputMode

	pendingID int
	tasks     []tasksdk.Task
	status    string
	errMsg    string
	width     int
	height    int
}

var (
	addBind     = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleBind  = key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "done/undo"))
	deleteBind  = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	refreshBind = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
)

// New builds the model; call Init (or run it in a program) to load tasks.
func New(c Client) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{addBind, toggleBind, deleteBind, refreshBind}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{client: c, list: l, ti: ti, width: 80, height: 24}
	m.resize()
	m.setTitle()
	return m
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, c Client) error {
	p := tea.NewProgram(New(c), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd { return m.fetch() }

func (m Model) fetch() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tasks, err := c.ListTasks(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m Model) run(op func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		status, err := op(ctx)
		return opDoneMsg{status: status, err: err}
	}
}

func (m Model) selected() (tasksdk.Task, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return tasksdk.Task{}, false
	}
	return it.task, true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case tasksLoadedMsg:
		if msg.err != nil {
			m.errMsg = "Failed to fetch tasks: " + tasksdk.Detail(msg.err)
			return m, nil
		}
		m.tasks = msg.tasks
		m.setTitle()
		items := make([]list.Item, 0, len(msg.tasks))
		for _, t := range msg.tasks {
			items = append(items, listItem{task: t})
		}
		cmd := m.list.SetItems(items)
		return m, cmd
	case opDoneMsg:
		if msg.err != nil {
			m.errMsg = tasksdk.Detail(msg.err)
			m.status = ""
		} else {
			m.errMsg = ""
			m.status = msg.status
		}
		return m, m.fetch()
	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetch()
		case "a":
			m.mode = modeAddID
			m.resize()
			m.errMsg = ""
			m.ti.SetValue("")
			m.ti.Placeholder = "Task ID"
			return m, m.ti.Focus()
		case " ", "enter":
			t, ok := m.selected()
			if !ok {
				return m, nil
			}
			c := m.client
			return m, m.run(func(ctx context.Context) (string, error) {
				res, err := c.SetDone(ctx, t.ID, !t.Done)
				return res.Message, err
			})
		case "d":
			t, ok := m.selected()
			if !ok {
				return m, nil
			}
			c := m.client
			return m, m.run(func(ctx context.Context) (string, error) {
				return c.DeleteTask(ctx, t.ID)
			})
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.resize()
		m.ti.SetValue("")
		m.ti.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.ti.Value())
		if m.mode == modeAddID {
			id, err := strconv.Atoi(value)
			if err != nil || id == 0 {
				m.errMsg = "Please enter both ID and title"
				return m, nil
			}
			m.pendingID = id
			m.mode = modeAddTitle
			m.errMsg = ""
			m.ti.SetValue("")
			m.ti.Placeholder = "Task title"
			return m, nil
		}
		if value == "" {
			m.errMsg = "Please enter both ID and title"
			return m, nil
		}
		id := m.pendingID
		c := m.client
		m.mode = modeBrowse
		m.resize()
		m.ti.SetValue("")
		m.ti.Blur()
		return m, m.run(func(ctx context.Context) (string, error) {
			res, err := c.CreateTask(ctx, id, value, false)
			return res.Message, err
		})
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) counts() (done, pending int) {
	for _, t := range m.tasks {
		if t.Done {
			done++
		} else {
			pending++
		}
	}
	return done, pending
}

func (m *Model) resize() {
	listHeight := m.height - 4
	if m.mode != modeBrowse {
		listHeight -= 3
	}
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width-4, listHeight)
}

func (m *Model) setTitle() {
	dn, pn := m.counts()
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Tasks"),
		successStyle.Render("✔"), dn,
		pendingStyle.Render("•"), pn,
		accentStyle.Render("Total"), len(m.tasks),
	)
}

func (m Model) View() string {
	content := m.list.View()
	if len(m.tasks) == 0 {
		content = m.list.Title + "\n\n" + mutedStyle.Render("No tasks yet. Add one to get started!")
	}
	if m.mode != modeBrowse {
		label := "New task ID"
		if m.mode == modeAddTitle {
			label = fmt.Sprintf("Title for task #%d", m.pendingID)
		}
		content += "\n" + panelStyle.Render(label+"\n"+m.ti.View())
	}
	switch {
	case m.errMsg != "":
		content += "\n" + errorStyle.Render("✖ "+m.errMsg)
	case m.status != "":
		content += "\n" + successStyle.Render("✔ "+m.status)
	}
	return panelStyle.Render(content)
}
