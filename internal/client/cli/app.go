package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tellbrandz/tbz/internal/client/backend"
	"github.com/tellbrandz/tbz/internal/client/config"
	"github.com/tellbrandz/tbz/internal/client/directory"
	"github.com/tellbrandz/tbz/internal/client/favorites"
	"github.com/tellbrandz/tbz/internal/client/functions"
	"github.com/tellbrandz/tbz/internal/client/localdb"
	"github.com/tellbrandz/tbz/internal/client/localstore"
	"github.com/tellbrandz/tbz/internal/client/models"
	"github.com/tellbrandz/tbz/internal/client/onboarding"
	"github.com/tellbrandz/tbz/internal/client/preferences"
	"github.com/tellbrandz/tbz/internal/client/profile"
	"github.com/tellbrandz/tbz/internal/client/records"
	"github.com/tellbrandz/tbz/internal/client/session"
	"github.com/tellbrandz/tbz/internal/client/storage"
	"github.com/tellbrandz/tbz/internal/client/uploads"
	"github.com/tellbrandz/tbz/internal/client/view"
	"github.com/tellbrandz/tbz/internal/client/workflows"
	"github.com/tellbrandz/tbz/internal/logging"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

// pinger is the connectivity probe used by the online watcher.
type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config *config.Config
	log    logging.Logger

	db      *sql.DB
	remote  *sql.DB
	client  *backend.HTTPClient
	pinger  pinger
	fns     *functions.Invoker
	store   localstore.Store
	session *session.Adapter
	records records.Repository

	uploader    *uploads.Uploader
	profile     *profile.Cache
	views       *view.Controller
	viewport    *terminalViewport
	onboarding  *onboarding.Machine
	favorites   *favorites.List
	preferences *preferences.Preferences

	feed    *workflows.TellFeed
	tells   *workflows.TellWorkflow
	claims  *workflows.BrandClaimWorkflow
	auth    *workflows.AuthWorkflow
	notice  *workflows.Notice
	compare directory.Comparison

	// tellForm and claimForm survive a failed submit so the user can retry.
	tellForm  *workflows.TellForm
	claimForm *workflows.BrandClaimForm
	// brands is the last directory listing; compare and export work on it.
	brands []models.Brand

	modeMu sync.Mutex
	Mode   Mode
	reader *bufio.Reader
	out    io.Writer

	stops []func()
}

// NewApp opens local state, connects the backend client and wires every
// client component. The caller must call Close.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel, os.Stderr)

	db, err := localdb.Open(ctx, c.StateDB)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	client := backend.NewHTTPClient(c.BackendURL, c.AnonKey, c.RequestTimeout)
	fns := functions.NewInvoker(client)
	store := localstore.NewSQLiteStore(db)
	sessions := session.NewAdapter(client, fns, store, log)

	a := &App{
		config:      c,
		log:         log,
		db:          db,
		client:      client,
		pinger:      client,
		fns:         fns,
		store:       store,
		session:     sessions,
		onboarding:  onboarding.New(store, log),
		favorites:   favorites.New(store),
		preferences: preferences.New(store),
		notice:      workflows.NewNotice(),
		tellForm:    workflows.NewTellForm(),
		claimForm:   workflows.NewBrandClaimForm(),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}

	switch c.Records.Driver {
	case config.RecordsPostgres:
		remote, err := records.OpenPostgres(ctx, c.Records.DSN)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.remote = remote
		a.records = records.NewPostgres(remote, func() map[string]any {
			return sessions.Current().Claims()
		})
	case config.RecordsREST, "":
		a.records = records.NewREST(client)
	default:
		a.Close()
		return nil, fmt.Errorf("unknown records driver %q", c.Records.Driver)
	}

	objects, err := storage.New(ctx, c.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.uploader = uploads.NewUploader(objects, log)
	a.profile = profile.NewCache(a.records, sessions, a.uploader, log)

	a.viewport = newTerminalViewport(a.out)
	a.views = view.NewController(sessions, a.viewport)
	a.viewport.route = a.views.Route

	a.feed = workflows.NewTellFeed(a.records, records.TellFilter{Limit: 50}, log)
	a.tells = workflows.NewTellWorkflow(fns, a.uploader, a.feed, a.onboarding, log)
	a.claims = workflows.NewBrandClaimWorkflow(fns, a.uploader, a.notice, log)
	a.auth = workflows.NewAuthWorkflow(sessions, fns, log)

	return a, nil
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		if a.log != nil {
			a.log.Info(context.Background(), fmt.Sprintf("Switched to %s mode", mode))
		}
	}
}

func (a *App) mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.Mode
}

// Run starts the background machinery and blocks in the REPL until the
// user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	go a.client.StartRefresher(ctx, a.config.RefreshLeeway, a.log)
	a.stops = append(a.stops, a.views.Bind())
	a.session.Start(ctx)
	a.profile.Watch(ctx)

	select {
	case <-a.session.Ready():
	case <-ctx.Done():
		return
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	a.Root(ctx)
}

// Close releases the local database, the backend client and any pending
// timers. It is safe to call more than once.
func (a *App) Close() {
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil
	if a.views != nil {
		a.views.Close()
	}
	if a.feed != nil {
		a.feed.Wait()
	}
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.remote != nil {
		_ = a.remote.Close()
		a.remote = nil
	}
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil && a.session.Current() != nil
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		a.setMode(ModeDisabled)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.pinger.Ping(ctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
