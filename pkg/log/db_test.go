package log

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) (*DB, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	wg := &sync.WaitGroup{}
	logDB := NewDB(filepath.Join(t.TempDir(), "logs.db"), wg)
	require.NoError(t, logDB.Init(ctx))

	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return logDB, cancel
}

func TestDB(t *testing.T) {
	t.Run("saveAndQuery", func(t *testing.T) {
		logDB, _ := newTestDB(t)

		logs := []Log{
			{Level: LevelError, Time: 1, Msg: "a", Src: "recorder", Rec: "rec1"},
			{Level: LevelWarning, Time: 2, Msg: "b", Src: "recorder", Rec: "rec1"},
			{Level: LevelInfo, Time: 3, Msg: "c", Src: "storage", Rec: "rec2"},
		}
		for _, l := range logs {
			require.NoError(t, logDB.saveLog(l))
		}

		all, err := logDB.Query(Query{})
		require.NoError(t, err)
		require.Equal(t, []Log{logs[2], logs[1], logs[0]}, *all)

		warnings, err := logDB.Query(Query{Levels: []Level{LevelWarning}})
		require.NoError(t, err)
		require.Equal(t, []Log{logs[1]}, *warnings)

		storage, err := logDB.Query(Query{Sources: []string{"storage"}})
		require.NoError(t, err)
		require.Equal(t, []Log{logs[2]}, *storage)

		rec1, err := logDB.Query(Query{Recs: []string{"rec1"}, Limit: 1})
		require.NoError(t, err)
		require.Equal(t, []Log{logs[1]}, *rec1)

		before, err := logDB.Query(Query{Time: 3})
		require.NoError(t, err)
		require.Equal(t, []Log{logs[1], logs[0]}, *before)
	})
	t.Run("maxKeys", func(t *testing.T) {
		logDB, _ := newTestDB(t)
		logDB.maxKeys = 2

		require.NoError(t, logDB.saveLog(Log{Time: 1, Msg: "a"}))
		require.NoError(t, logDB.saveLog(Log{Time: 2, Msg: "b"}))
		require.NoError(t, logDB.saveLog(Log{Time: 3, Msg: "c"}))

		logs, err := logDB.Query(Query{})
		require.NoError(t, err)
		require.Len(t, *logs, 2)
		require.Equal(t, "c", (*logs)[0].Msg)
		require.Equal(t, "b", (*logs)[1].Msg)
	})
	t.Run("emptyQuery", func(t *testing.T) {
		logDB, _ := newTestDB(t)

		logs, err := logDB.Query(Query{})
		require.NoError(t, err)
		require.Empty(t, *logs)
	})
}
