package handler

import (
	"questlog/backend/internal/database"
	"questlog/backend/internal/hub"
	"questlog/backend/internal/relationship"
)

// Shared handler state. Init must be called after database.Connect (tests
// call it after wiring their own database handle).
var (
	relStore *relationship.Store
	eventHub *hub.Hub
)

// Init wires the handlers to the database-backed relationship store and the
// global notification hub.
func Init() {
	relStore = relationship.NewStore(database.DB)
	eventHub = hub.GlobalHub
}
