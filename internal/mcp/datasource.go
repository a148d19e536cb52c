package mcp

import (
	"context"

	"github.com/meltforce/pulsefit/internal/catalog"
	"github.com/meltforce/pulsefit/internal/models"
	"github.com/meltforce/pulsefit/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both Local (catalog and
// database in-process) and HTTPClient (remote via REST API) satisfy this
// interface.
type DataSource interface {
	ListWorkouts(ctx context.Context, category models.Category) ([]models.Workout, error)
	GetWorkout(ctx context.Context, id string) (models.Workout, error)
	GetUserProfile(ctx context.Context) (*models.UserProfile, error)
	Dashboard(ctx context.Context) (storage.Dashboard, error)
	ListSessions(ctx context.Context, limit int) ([]models.SessionRecord, error)
}

// Local serves MCP requests from an open database and catalog.
type Local struct {
	*storage.DB
	Catalog *catalog.Catalog
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = Local{}

func (l Local) ListWorkouts(_ context.Context, category models.Category) ([]models.Workout, error) {
	return l.Catalog.ByCategory(category), nil
}

func (l Local) GetWorkout(_ context.Context, id string) (models.Workout, error) {
	return l.Catalog.Get(id)
}
