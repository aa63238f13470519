package core

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wodo.ai/wodo-connect/internal/config"
	"wodo.ai/wodo-connect/internal/events"
	"wodo.ai/wodo-connect/internal/store"
	"wodo.ai/wodo-connect/internal/testutil"
)

func TestMain(m *testing.M) {
	config.AppConfig.JWTSecret = "core-test-secret"
	os.Exit(m.Run())
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Services
	store    *store.Store
	clock    *testutil.Clock
	personas *testutil.Personas
	hub      *events.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.New(store.NewMemoryStore())
	clock := testutil.NewClock(t0)
	personas := testutil.NewPersonas()
	hub := events.NewHub()
	svc := NewServices(st, personas, hub, Options{Now: clock.Now})
	return &fixture{svc: svc, store: st, clock: clock, personas: personas, hub: hub}
}

// account creates and returns a registered account.
func (f *fixture) account(t *testing.T, name, username string) store.UserAccount {
	t.Helper()
	res, err := f.svc.Profiles.CreateAccount(context.Background(), name, username)
	require.NoError(t, err)
	return res.Session.Account
}

func drain(ch <-chan events.Event) []events.Event {
	var out []events.Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
