package nav

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-storefront/internal/domain/session"
)

type mockSessions struct {
	current   session.Session
	logoutErr error
}

func (m *mockSessions) Current() session.Session { return m.current }

func (m *mockSessions) Logout(_ context.Context) error {
	if m.logoutErr != nil {
		return m.logoutErr
	}
	m.current = session.Session{}
	return nil
}

type mockCounter struct {
	n     int
	err   error
	calls int
}

func (m *mockCounter) Count(_ context.Context) (int, error) {
	m.calls++
	return m.n, m.err
}

func signedIn(role session.Role) *mockSessions {
	return &mockSessions{current: session.Session{
		User:  session.User{ID: 3, Name: "somchai", Role: role},
		Token: "t",
	}}
}

func TestLinksFor(t *testing.T) {
	tests := []struct {
		name    string
		session session.Session
		want    []string
	}{
		{name: "guest", session: session.Session{}, want: []string{"/", "/register"}},
		{
			name:    "user",
			session: session.Session{User: session.User{ID: 1, Role: session.RoleUser}},
			want:    []string{"/", "/cart", "/product01", "/address"},
		},
		{
			name:    "admin",
			session: session.Session{User: session.User{ID: 1, Role: session.RoleAdmin}},
			want:    []string{"/home", "/order"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, l := range LinksFor(tt.session) {
				got = append(got, l.To)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShell_RefreshCartCount(t *testing.T) {
	counter := &mockCounter{n: 3}
	s := NewShell(signedIn(session.RoleUser), counter)

	require.NoError(t, s.RefreshCartCount(context.Background()))
	assert.Equal(t, 3, s.CartCount())

	n, ok := s.Badge(Link{To: CartPath})
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = s.Badge(Link{To: "/"})
	assert.False(t, ok)
}

func TestShell_RefreshCartCountGuestSkipsFetch(t *testing.T) {
	counter := &mockCounter{n: 3}
	s := NewShell(&mockSessions{}, counter)

	require.NoError(t, s.RefreshCartCount(context.Background()))
	assert.Zero(t, counter.calls)
	assert.Zero(t, s.CartCount())
}

func TestShell_RefreshCartCountError(t *testing.T) {
	s := NewShell(signedIn(session.RoleUser), &mockCounter{err: errors.New("boom")})

	require.Error(t, s.RefreshCartCount(context.Background()))
	_, ok := s.Badge(Link{To: CartPath})
	assert.False(t, ok)
}

func TestShell_Compact(t *testing.T) {
	s := NewShell(&mockSessions{}, &mockCounter{})

	s.SetScroll(50)
	assert.False(t, s.Compact())
	s.SetScroll(51)
	assert.True(t, s.Compact())
	s.SetScroll(0)
	assert.False(t, s.Compact())
}

func TestShell_Menu(t *testing.T) {
	s := NewShell(&mockSessions{}, &mockCounter{})

	assert.True(t, s.ToggleMenu())
	assert.True(t, s.MenuOpen())
	assert.False(t, s.ToggleMenu())

	s.ToggleMenu()
	s.CloseMenu()
	assert.False(t, s.MenuOpen())
}

func TestShell_TitleAndLogout(t *testing.T) {
	sessions := signedIn(session.RoleUser)
	s := NewShell(sessions, &mockCounter{n: 2})
	require.NoError(t, s.RefreshCartCount(context.Background()))

	assert.Equal(t, "CS.SHOP | somchai", s.Title())

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, "CS.SHOP | ", s.Title())
	assert.Zero(t, s.CartCount())
	assert.Len(t, s.Links(), 2)
}
