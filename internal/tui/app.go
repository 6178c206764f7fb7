package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/auth"
	"github.com/iAmNsengi/zyyp/internal/feed"
	"github.com/iAmNsengi/zyyp/internal/filter"
	"github.com/iAmNsengi/zyyp/internal/interaction"
)

const (
	requestTimeout = 15 * time.Second
	bookmarksLimit = 50
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeTags
	modeHelp
)

type view int

const (
	viewFeed view = iota
	viewBookmarks
)

// Backend is the API surface the TUI drives.
type Backend interface {
	feed.Fetcher
	interaction.Voter
	interaction.Bookmarker
	Bookmarks(ctx context.Context, page, pageSize int) (*api.Page, error)
}

// Reads serves cached shared lists.
type Reads interface {
	Trending(ctx context.Context, limit int) ([]api.Article, error)
	Tags(ctx context.Context) ([]api.Tag, error)
}

// Viewer reports who is signed in.
type Viewer interface {
	IsAuthenticated() bool
	User() *auth.User
}

type History interface {
	RecordOpen(a api.Article) error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Backend       Backend
	Reads         Reads
	Viewer        Viewer
	History       History
	Open          func(url string) error
	Filters       *filter.State
	PageSize      int
	TrendingLimit int
	Logger        *slog.Logger
}

type App struct {
	backend       Backend
	reads         Reads
	viewer        Viewer
	history       History
	open          func(string) error
	logger        *slog.Logger
	trendingLimit int

	filters *filter.State
	engine  *feed.Engine
	cards   *interaction.Set
	flash   *interaction.Flash

	view   view
	mode   mode
	focus  focusPane
	cursor int

	bookmarks        []api.Article
	bookmarksCursor  int
	bookmarksLoading bool

	trending []api.Article
	tagBar   tagBar

	width  int
	height int

	searchInput   textinput.Model
	spinner       spinner.Model
	previewScroll int
	notice        string
	err           error
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search articles..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	filters := opts.Filters
	if filters == nil {
		filters = filter.New()
	}
	ti.SetValue(filters.Search())

	return &App{
		backend:       opts.Backend,
		reads:         opts.Reads,
		viewer:        opts.Viewer,
		history:       opts.History,
		open:          opts.Open,
		logger:        logger,
		trendingLimit: opts.TrendingLimit,
		filters:       filters,
		engine:        feed.New(opts.Backend, filters, feed.WithPageSize(opts.PageSize), feed.WithLogger(logger)),
		cards:         interaction.NewSet(),
		flash:         interaction.NewFlash(),
		searchInput:   ti,
		spinner:       sp,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.nearCmd(0),
		a.loadTagsCmd(),
		a.loadTrendingCmd(),
		a.spinner.Tick,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky messages on any keypress
		a.err = nil
		a.notice = ""
		return a.handleKey(msg)

	case pageLoadedMsg:
		if !a.engine.Resolve(msg.req, msg.page, msg.err) {
			return a, nil
		}
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.clampCursor()
		// Short pages may leave the cursor near the end already
		return a, a.nearCmd(a.cursor)

	case tagsLoadedMsg:
		if msg.err != nil {
			a.logger.Warn("loading tags", "error", msg.err)
			return a, nil
		}
		a.tagBar.setTags(msg.tags)
		return a, nil

	case trendingLoadedMsg:
		if msg.err != nil {
			a.logger.Warn("loading trending", "error", msg.err)
			return a, nil
		}
		a.trending = msg.articles
		return a, nil

	case bookmarksLoadedMsg:
		a.bookmarksLoading = false
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		// The listing itself is the bookmark state
		for i := range msg.articles {
			msg.articles[i].IsBookmarked = true
		}
		a.bookmarks = msg.articles
		if a.bookmarksCursor >= len(a.bookmarks) {
			a.bookmarksCursor = max(0, len(a.bookmarks)-1)
		}
		return a, nil

	case voteDoneMsg:
		if err := msg.card.ApplyVote(msg.action, msg.result, msg.err); err != nil {
			a.reportActionErr("vote", err)
		}
		return a, nil

	case bookmarkDoneMsg:
		if err := msg.card.ApplyBookmark(msg.action, msg.err); err != nil {
			a.reportActionErr("bookmark", err)
			return a, nil
		}
		if msg.action.Remove {
			a.notice = "Bookmark removed"
		} else {
			a.notice = "Bookmarked"
		}
		return a, nil

	case openedMsg:
		if msg.err != nil {
			a.err = msg.err
		}
		return a, nil

	case flashDoneMsg:
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) reportActionErr(what string, err error) {
	if errors.Is(err, interaction.ErrSuperseded) {
		a.logger.Debug("dropping superseded result", "action", what)
		return
	}
	a.logger.Warn(what+" failed", "error", err)
	a.err = err
}

// articles returns the list shown by the current view.
func (a *App) articles() []api.Article {
	if a.view == viewBookmarks {
		return a.bookmarks
	}
	return a.engine.Articles()
}

func (a *App) cursorRef() *int {
	if a.view == viewBookmarks {
		return &a.bookmarksCursor
	}
	return &a.cursor
}

func (a *App) selected() (api.Article, bool) {
	list := a.articles()
	c := *a.cursorRef()
	if c < 0 || c >= len(list) {
		return api.Article{}, false
	}
	return list[c], true
}

func (a *App) clampCursor() {
	n := len(a.engine.Articles())
	if a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

// filtersChanged restarts the feed for the new filter key.
func (a *App) filtersChanged() tea.Cmd {
	a.cursor = 0
	a.previewScroll = 0
	a.cards.Reset()
	return a.nearCmd(0)
}

func (a *App) isAuthenticated() bool {
	return a.viewer != nil && a.viewer.IsAuthenticated()
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
