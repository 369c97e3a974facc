package handlers

import (
	"go.uber.org/zap"

	"github.com/padraicbc/recipeapi/session"
	"github.com/padraicbc/recipeapi/store"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	repo     store.Repository
	sessions *session.Manager
	log      *zap.Logger
}

// New creates a Handler over the given repository and session manager.
func New(repo store.Repository, sessions *session.Manager, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{repo: repo, sessions: sessions, log: log}
}
