package handler

import (
	"studiohub/backend/internal/chathub"
	"studiohub/backend/internal/storage"
)

// Handler carries the dependencies shared by all HTTP routes.
type Handler struct {
	Hub       *chathub.Hub
	Storage   storage.Storage
	JWTSecret []byte
}

func NewHandler(hub *chathub.Hub, s storage.Storage, jwtSecret []byte) *Handler {
	return &Handler{
		Hub:       hub,
		Storage:   s,
		JWTSecret: jwtSecret,
	}
}
