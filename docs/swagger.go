// Package docs NoteKeeper API
//
// @title  NoteKeeper API
// @version 1.0.0
// @description Authenticated personal notes with live updates.
// @host      localhost:8080
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package docs

//go:generate swag init --dir .,../cmd/server/handlers,../internal/services --generalInfo swagger.go --output . --outputTypes go

import (
	_ "note-keeper/cmd/server/handlers/httperr"
	_ "note-keeper/internal/services/auth"
	_ "note-keeper/internal/services/notes"
)
