package behavior

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(Schema)
	require.NoError(t, err)

	return NewRepository(db)
}

func TestRepository_AppendAndReadBack(t *testing.T) {
	repo := setupTestRepo(t)

	first := Event{Type: EventView, Timestamp: 1000, Path: "/home"}
	second := Event{Type: EventAction, Timestamp: 2000, Action: ActionFX}
	require.NoError(t, repo.Append(first))
	require.NoError(t, repo.Append(second))

	events, err := repo.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first, events[0])
	assert.Equal(t, second, events[1])
}

func TestRepository_ReadPreservesInsertionOrderNotTimestampOrder(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.Append(Event{Type: EventView, Timestamp: 5000, Path: "/late"}))
	require.NoError(t, repo.Append(Event{Type: EventView, Timestamp: 1000, Path: "/early"}))

	events, err := repo.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "/late", events[0].Path)
	assert.Equal(t, "/early", events[1].Path)
}

func TestRepository_RejectsUnknownEventType(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.Append(Event{Type: "telemetry", Timestamp: 1000})
	assert.Error(t, err)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepository_FillsZeroTimestamp(t *testing.T) {
	repo := setupTestRepo(t)

	before := time.Now().UnixMilli()
	require.NoError(t, repo.Append(Event{Type: EventView, Path: "/home"}))
	after := time.Now().UnixMilli()

	events, err := repo.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.GreaterOrEqual(t, events[0].Timestamp, before)
	assert.LessOrEqual(t, events[0].Timestamp, after)
}

func TestRepository_EnforcesCap(t *testing.T) {
	repo := setupTestRepo(t)

	for i := 0; i < MaxEvents+25; i++ {
		require.NoError(t, repo.Append(Event{
			Type:      EventView,
			Timestamp: int64(i + 1),
			Path:      "/home",
		}))
	}

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, MaxEvents, count)

	// The survivors are the newest MaxEvents appends.
	events, err := repo.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, MaxEvents)
	assert.Equal(t, int64(26), events[0].Timestamp)
	assert.Equal(t, int64(MaxEvents+25), events[len(events)-1].Timestamp)
}

func TestRepository_EmptyLogYieldsEmptySlice(t *testing.T) {
	repo := setupTestRepo(t)

	events, err := repo.ReadAll()
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestRepository_Clear(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.Append(Event{Type: EventView, Timestamp: 1, Path: "/home"}))
	require.NoError(t, repo.Clear())

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepository_DeleteOlderThan(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.Append(Event{Type: EventView, Timestamp: 100, Path: "/old"}))
	require.NoError(t, repo.Append(Event{Type: EventView, Timestamp: 200, Path: "/edge"}))
	require.NoError(t, repo.Append(Event{Type: EventView, Timestamp: 300, Path: "/new"}))

	deleted, err := repo.DeleteOlderThan(200)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, err := repo.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "/edge", events[0].Path)
	assert.Equal(t, "/new", events[1].Path)
}
