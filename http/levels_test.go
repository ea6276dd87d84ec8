package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/level"
	"github.com/pixelplumber/plumber/levelfile"
	"github.com/pixelplumber/plumber/models"
	"github.com/pixelplumber/plumber/store"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
)

func TestHandleSnapshot(t *testing.T) {
	l := level.New(level.Config{})
	l.ID = "1-1"
	l.AddPlayer(models.NewPlayer(geom.Vec2{2, 5}))
	l.AddEntity(models.NewGoomba(geom.Vec2{6, 5}))

	loop := level.NewLoop(l, nil, 0, true)
	h := HandleSnapshot(loop)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, SnapshotPath, nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	loop.Step()

	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, SnapshotPath, nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var snap level.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Equal(t, "1-1", snap.LevelID)
	require.Len(t, snap.Players, 1)
	require.Len(t, snap.Actors, 1)
	require.NotEmpty(t, snap.Sprites)
}

func newTestLibrary(t *testing.T) (*store.DB, store.LevelInfo, *levelfile.File) {
	db, err := store.Open(filepath.Join(t.TempDir(), "levels.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &levelfile.File{
		Width:  3,
		Height: 2,
		Tiles:  make([]models.Tile, 6),
		Entities: []levelfile.Entity{
			{Kind: models.KindPlayer, Position: geom.Vec2{1, 1}},
			{Kind: models.KindKoopa, Flags: levelfile.FlagGreen, Position: geom.Vec2{2, 1}},
		},
	}
	f.Tiles[0] = models.Tile{Solid: true, Sprite: models.SpriteGround}

	info, err := db.Save(t.Context(), "world 1-1", f)
	require.NoError(t, err)
	return db, info, f
}

func TestHandleLevels(t *testing.T) {
	db, info, f := newTestLibrary(t)
	h := HandleLevels(db)

	do := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(method, path, nil))
		return w
	}

	t.Run("list", func(t *testing.T) {
		w := do(http.MethodGet, LevelsPath)
		require.Equal(t, http.StatusOK, w.Code)

		var levels []store.LevelInfo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &levels))
		require.Len(t, levels, 1)
		require.Equal(t, info.ID, levels[0].ID)
		require.Equal(t, "world 1-1", levels[0].Name)
	})

	t.Run("describe", func(t *testing.T) {
		w := do(http.MethodGet, LevelsPath+info.ID)
		require.Equal(t, http.StatusOK, w.Code)

		var got store.LevelInfo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Equal(t, info.ID, got.ID)
		require.Equal(t, info.Digest, got.Digest)
		require.Equal(t, 3, got.Width)
		require.Equal(t, 2, got.Height)
		require.Equal(t, 2, got.Entities)
		require.WithinDuration(t, info.CreatedAt, got.CreatedAt, time.Millisecond)
	})

	t.Run("download", func(t *testing.T) {
		w := do(http.MethodGet, LevelsPath+info.ID+".lvl")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, levelFileContentType, w.Header().Get("Content-Type"))
		require.Equal(t, info.Digest, w.Header().Get("ETag"))
		require.Equal(t, info.Digest, store.Digest(w.Body.Bytes()))

		got, err := levelfile.Decode(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		require.Equal(t, f, got)
	})

	t.Run("unknown level", func(t *testing.T) {
		w := do(http.MethodGet, LevelsPath+"missing")
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unsupported method", func(t *testing.T) {
		w := do(http.MethodPost, LevelsPath)
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := do(http.MethodDelete, LevelsPath+info.ID)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = do(http.MethodDelete, LevelsPath+info.ID)
		require.Equal(t, http.StatusNotFound, w.Code)

		w = do(http.MethodGet, LevelsPath)
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, "[]", w.Body.String())
	})
}

func TestHandleIssueToken(t *testing.T) {
	h := HandleIssueToken(testSecret, time.Minute)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, TokensPath, nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, TokensPath, nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var res tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.ViewerID)
	require.True(t, res.ExpiresAt.After(time.Now()))

	v, err := VerifyViewerToken(testSecret, res.Token)
	require.NoError(t, err)
	require.Equal(t, res.ViewerID, v.ID)
	require.False(t, v.Operator)
}
