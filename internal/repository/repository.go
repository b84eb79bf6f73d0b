package repository

import (
	"github.com/yourusername/matchday-consensus/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Analysis AnalysisRepository
}

// NewRepositories creates the postgres repositories, or the in-memory ones
// when db is nil
func NewRepositories(db *database.DB) *Repositories {
	if db == nil {
		return &Repositories{Analysis: NewMemoryAnalysisRepository()}
	}
	return &Repositories{Analysis: NewPostgresAnalysisRepository(db)}
}
