// Package testserver runs the full habitkit stack behind an httptest server.
package testserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/habitkit/internal/domain/habit"
	"github.com/rpggio/habitkit/internal/domain/reminder"
	"github.com/rpggio/habitkit/internal/domain/settings"
	"github.com/rpggio/habitkit/internal/mcp"
	"github.com/rpggio/habitkit/internal/snapshot"
	"github.com/rpggio/habitkit/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	KV       *sqlite.KVStore
	Store    *habit.Store
	Settings *settings.Service
	Poller   *reminder.PolledBackend
	Inbox    *Inbox
}

// New starts a server backed by a per-test in-memory database and the
// polled reminder backend. The poller is not running; call Poller.Check.
func New(t *testing.T) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	kv := sqlite.NewKVStore(db)

	inbox := &Inbox{}
	settingsSvc := settings.NewService(kv, nil)
	poller := reminder.NewPolledBackend(kv, reminder.NewPermittedNotifier(inbox, settingsSvc), time.Minute, nil)
	scheduler := reminder.NewScheduler(poller, settingsSvc, nil)

	store := habit.NewStore(snapshot.NewRepository(kv), scheduler, nil)
	store.Load(context.Background())

	server := httptest.NewServer(mcp.NewHTTPHandler(mcp.NewServer(mcp.Config{
		Habits:   store,
		Settings: settingsSvc,
	})))

	t.Cleanup(func() {
		server.Close()
		_ = store.Flush(context.Background())
		_ = db.Close()
	})

	return &TestServer{
		Server:   server,
		DB:       db,
		KV:       kv,
		Store:    store,
		Settings: settingsSvc,
		Poller:   poller,
		Inbox:    inbox,
	}
}

// Connect opens an MCP client session over streamable HTTP.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{Endpoint: ts.Server.URL + "/mcp"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

// Inbox records delivered reminder notifications.
type Inbox struct {
	mu   sync.Mutex
	sent []reminder.Notification
}

func (i *Inbox) Notify(_ context.Context, n reminder.Notification) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.sent = append(i.sent, n)
	return nil
}

// Sent returns a copy of every notification delivered so far.
func (i *Inbox) Sent() []reminder.Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]reminder.Notification(nil), i.sent...)
}
