package session

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/fifteen/game/engine"
)

var generatedID = regexp.MustCompile(`^[0-9a-f]{4}$`)

func testConfig() *engine.GameConfig {
	cfg := &engine.GameConfig{Name: "classic", Description: "session tests"}
	cfg.Messages.Welcome = "Slide the tiles"
	cfg.Messages.Moved = "%d moves"
	cfg.Messages.Ignored = "Not in line"
	cfg.Messages.Victory = "Solved in %d moves"
	cfg.Messages.NewGame = "0 moves"
	return cfg
}

func TestManager_CreateGeneratesShortIDs(t *testing.T) {
	m := NewManager()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sess, err := m.Create("", testConfig())
		require.NoError(t, err)
		assert.Regexp(t, generatedID, sess.ID)
		assert.False(t, seen[sess.ID], "id %s handed out twice", sess.ID)
		seen[sess.ID] = true

		require.NotNil(t, sess.Engine)
		assert.Equal(t, sess.CreatedAt, sess.LastAccessedAt)
		assert.Equal(t, "Slide the tiles", sess.Engine.GetState().Message)
	}
	assert.Equal(t, 50, m.Count())
}

func TestManager_CreateRejects(t *testing.T) {
	m := NewManager()
	_, err := m.Create("Game", testConfig())
	require.NoError(t, err)

	_, err = m.Create("game", testConfig())
	assert.ErrorIs(t, err, ErrSessionAlreadyExists)

	_, err = m.Create("other", &engine.GameConfig{Name: "broken"})
	assert.Error(t, err)
	assert.Equal(t, 1, m.Count())
}

func TestManager_GetIgnoresCase(t *testing.T) {
	m := NewManager()
	created, err := m.Create("AbCd", testConfig())
	require.NoError(t, err)

	for _, id := range []string{"AbCd", "abcd", "ABCD"} {
		got, err := m.Get(id)
		require.NoError(t, err, id)
		assert.Same(t, created, got, id)
	}
	assert.Equal(t, "AbCd", created.ID, "the id keeps the casing it was created with")

	_, err = m.Get("zzzz")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Delete(t *testing.T) {
	m := NewManager()
	_, err := m.Create("beef", testConfig())
	require.NoError(t, err)

	require.NoError(t, m.Delete("BEEF"))
	assert.Zero(t, m.Count())

	_, err = m.Get("beef")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete("beef"), ErrSessionNotFound)
}

func TestManager_ListOldestFirst(t *testing.T) {
	m := NewManager()
	assert.Empty(t, m.List())

	for _, id := range []string{"c3", "a1", "b2"} {
		_, err := m.Create(id, testConfig())
		require.NoError(t, err)
	}
	// creation times can tie on coarse clocks, so pin them
	base := time.Now()
	for i, id := range []string{"c3", "a1", "b2"} {
		sess, err := m.Get(id)
		require.NoError(t, err)
		sess.CreatedAt = base.Add(time.Duration(i) * time.Second)
	}

	var ids []string
	for _, sess := range m.List() {
		ids = append(ids, sess.ID)
	}
	assert.Equal(t, []string{"c3", "a1", "b2"}, ids)

	// ties fall back to the id
	for _, sess := range m.List() {
		sess.CreatedAt = base
	}
	ids = ids[:0]
	for _, sess := range m.List() {
		ids = append(ids, sess.ID)
	}
	assert.Equal(t, []string{"a1", "b2", "c3"}, ids)
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	m := NewManager()
	sess, err := m.Create("f00d", testConfig())
	require.NoError(t, err)

	sess.LastAccessedAt = time.Now().Add(-time.Hour)
	require.NoError(t, m.UpdateLastAccessed("F00D"))
	assert.WithinDuration(t, time.Now(), sess.LastAccessedAt, time.Minute)
	assert.ErrorIs(t, m.UpdateLastAccessed("0000"), ErrSessionNotFound)
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	m := NewManager()
	for _, id := range []string{"old1", "old2", "new1"} {
		_, err := m.Create(id, testConfig())
		require.NoError(t, err)
	}
	for _, id := range []string{"old1", "old2"} {
		sess, err := m.Get(id)
		require.NoError(t, err)
		sess.LastAccessedAt = time.Now().Add(-25 * time.Hour)
	}

	assert.Equal(t, 2, m.CleanupExpiredSessions(24*time.Hour))
	assert.Equal(t, 1, m.Count())
	_, err := m.Get("new1")
	assert.NoError(t, err)

	// a touched session survives the next sweep
	require.NoError(t, m.UpdateLastAccessed("new1"))
	assert.Zero(t, m.CleanupExpiredSessions(24*time.Hour))

	assert.Equal(t, 1, m.CleanupExpiredSessions(-time.Second))
	assert.Zero(t, m.Count())
}

func TestManager_BoardsAreIndependent(t *testing.T) {
	m := NewManager()
	a, err := m.Create("aaaa", testConfig())
	require.NoError(t, err)
	b, err := m.Create("bbbb", testConfig())
	require.NoError(t, err)

	boardB := b.Engine.GetState().Board

	movable := a.Engine.GetMovableTiles()
	require.NotEmpty(t, movable)
	update, err := a.Engine.ActivateTile(movable[0])
	require.NoError(t, err)
	assert.Equal(t, 1, update.MoveCount)

	assert.Equal(t, 1, a.Engine.GetMoveCount())
	assert.Zero(t, b.Engine.GetMoveCount())
	assert.Equal(t, boardB, b.Engine.GetState().Board)
}

func TestManager_ConcurrentCreate(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	ids := make(chan string, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := m.Create("", testConfig())
			if err != nil {
				return
			}
			ids <- sess.ID
			_, _ = m.Get(sess.ID)
			_ = m.UpdateLastAccessed(sess.ID)
			_ = m.List()
		}()
	}
	wg.Wait()
	close(ids)

	unique := make(map[string]bool)
	for id := range ids {
		unique[id] = true
	}
	assert.Len(t, unique, m.Count())
	assert.Equal(t, 40, m.Count())
}
