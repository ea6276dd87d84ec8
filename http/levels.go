package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/google/uuid"
	"github.com/pixelplumber/plumber/level"
	"github.com/pixelplumber/plumber/levelfile"
	"github.com/pixelplumber/plumber/store"
)

const (
	SnapshotPath = "/snapshot"
	LevelsPath   = "/levels/"
	TokensPath   = "/tokens"

	levelFileContentType = "application/octet-stream"
)

// LevelLibrary is where levels are stored.
type LevelLibrary interface {
	List(ctx context.Context) ([]store.LevelInfo, error)
	Load(ctx context.Context, id string) (*levelfile.File, store.LevelInfo, error)
	Delete(ctx context.Context, id string) error
}

// HandleSnapshot responds with the snapshot of the last frame of loop.
func HandleSnapshot(loop *level.Loop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := loop.Latest()
		if !ok {
			writeError(w, http.StatusServiceUnavailable, "no frame has run yet")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// HandleLevels serves the level library:
//
//	GET    /levels/          lists the stored levels
//	GET    /levels/{id}      describes a level
//	GET    /levels/{id}.lvl  downloads a level file
//	DELETE /levels/{id}      deletes a level
func HandleLevels(lib LevelLibrary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, LevelsPath)

		switch {
		case id == "" && r.Method == http.MethodGet:
			levels, err := lib.List(r.Context())
			if err != nil {
				logs.Warn(err)
				writeError(w, http.StatusInternalServerError, "listing levels failed")
				return
			}
			if levels == nil {
				levels = []store.LevelInfo{}
			}
			writeJSON(w, http.StatusOK, levels)

		case id != "" && r.Method == http.MethodGet:
			download := strings.HasSuffix(id, ".lvl")
			id = strings.TrimSuffix(id, ".lvl")

			f, info, err := lib.Load(r.Context(), id)
			if err != nil {
				writeLibraryError(w, err, id)
				return
			}

			if !download {
				writeJSON(w, http.StatusOK, info)
				return
			}

			b, err := levelfile.Marshal(f)
			if err != nil {
				writeLibraryError(w, err, id)
				return
			}
			w.Header().Set("Content-Type", levelFileContentType)
			w.Header().Set("ETag", info.Digest)
			w.WriteHeader(http.StatusOK)
			w.Write(b)

		case id != "" && r.Method == http.MethodDelete:
			if err := lib.Delete(r.Context(), id); err != nil {
				writeLibraryError(w, err, id)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func writeLibraryError(w http.ResponseWriter, err error, id string) {
	if errors.IsType(err, store.ErrTypeLevelNotFound) {
		writeError(w, http.StatusNotFound, "level not found")
		return
	}

	logs.Warn(errors.New("level library request failed").
		WithTag("level_id", id).
		Wrap(err))
	writeError(w, http.StatusInternalServerError, "level library request failed")
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ViewerID  string    `json:"viewer_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandleIssueToken issues a spectator token for a new viewer. It is meant
// to be wrapped by an operator only VerifyViewerHandler.
func HandleIssueToken(secret []byte, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if ttl <= 0 {
			ttl = DefaultTokenTTL
		}

		v := Viewer{ID: uuid.NewString()}
		token, err := IssueViewerToken(secret, v, ttl)
		if err != nil {
			logs.Warn(err)
			writeError(w, http.StatusInternalServerError, "issuing token failed")
			return
		}

		logs.WithTag("viewer_id", v.ID).Info("viewer token issued")
		writeJSON(w, http.StatusCreated, tokenResponse{
			Token:     token,
			ViewerID:  v.ID,
			ExpiresAt: time.Now().Add(ttl).UTC(),
		})
	}
}
