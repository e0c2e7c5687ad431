package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-timesheets-client/api"
	"github.com/jrsteele09/go-timesheets-client/internal/app"
	"github.com/jrsteele09/go-timesheets-client/internal/config"
	"github.com/jrsteele09/go-timesheets-client/session"
	"github.com/jrsteele09/go-timesheets-client/storage/memstore"
	"github.com/jrsteele09/go-timesheets-client/transport"
	"github.com/jrsteele09/go-timesheets-client/transport/transportfake"
)

func fakeAPI(ctx context.Context, req transport.Request) (*transport.Response, error) {
	switch req.Path {
	case api.RouteAuthLogin:
		return transportfake.JSON(http.StatusOK, session.Credentials{AccessToken: "a1", RefreshToken: "r1", TokenType: "bearer"}), nil
	case api.RouteAuthMe:
		return transportfake.JSON(http.StatusOK, session.User{ID: 1, Email: "john.doe@example.com"}), nil
	case api.RouteProjects:
		return transportfake.JSON(http.StatusOK, []api.Project{{ID: 1, Name: "Acme"}}), nil
	}
	return transportfake.Status(http.StatusNotFound), nil
}

func newTestCLI(t *testing.T) (*cli, *bytes.Buffer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a := app.New(config.New(), transportfake.NewFakeTransport(fakeAPI), memstore.New())
	a.Start(ctx)
	t.Cleanup(func() { _ = a.Close() })

	out := &bytes.Buffer{}
	return &cli{app: a, out: out}, out
}

func TestDispatch_RequiresLogin(t *testing.T) {
	c, _ := newTestCLI(t)

	err := dispatch(context.Background(), c, []string{"projects", "list"})

	var exit exitError
	require.True(t, errors.As(err, &exit))
	require.Equal(t, exitLoginRequired, exit.code)
	require.Contains(t, exit.msg, "from=timesheets+projects+list")
}

func TestDispatch_LoginThenList(t *testing.T) {
	c, out := newTestCLI(t)
	ctx := context.Background()

	require.NoError(t, dispatch(ctx, c, []string{"login", "-email", "john.doe@example.com", "-password", "password123"}))
	require.Contains(t, out.String(), "logged in as john.doe@example.com")

	out.Reset()
	require.NoError(t, dispatch(ctx, c, []string{"projects"}))
	require.Contains(t, out.String(), "Acme")

	out.Reset()
	require.NoError(t, dispatch(ctx, c, []string{"logout"}))
	require.Error(t, dispatch(ctx, c, []string{"whoami"}))
}

func TestDispatch_UnknownCommand(t *testing.T) {
	c, _ := newTestCLI(t)
	c.app.Store.SetSession(&session.Credentials{AccessToken: "a1", RefreshToken: "r1"})
	c.app.Store.MarkInitialized()

	require.EqualError(t, dispatch(context.Background(), c, []string{"timetravel"}), `unknown command "timetravel"`)
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("1, 2,3")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = parseIDs("")
	require.NoError(t, err)
	require.Nil(t, ids)

	_, err = parseIDs("1,x")
	require.Error(t, err)
}
