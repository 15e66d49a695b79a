package squadrating

import "context"

type Repository interface {
	List(ctx context.Context, squadID string) ([]Rating, error)
	// Create inserts the rating and its player ratings in one transaction.
	Create(ctx context.Context, rating Rating) error
}
