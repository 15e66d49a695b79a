package profile

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Profile, bool, error)
	GetByEmail(ctx context.Context, email string) (Profile, bool, error)
	FindByAlias(ctx context.Context, alias string) (Profile, bool, error)
	ListByIDs(ctx context.Context, ids []string) ([]Profile, error)
	ListAliases(ctx context.Context, profileID string) ([]Alias, error)
}
