package engine

import (
	"context"
	"fmt"
)

// Migrate copies whole collections from a source to a destination store.
// This works for:
// - Remote API -> local data dir (backup / offline copy)
// - Seed data -> fresh store
func Migrate(ctx context.Context, src Loader, dst Importer, collections []string) error {
	for _, name := range collections {
		if err := ctx.Err(); err != nil {
			return err
		}

		records, err := src.FetchCollection(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to fetch collection %s: %w", name, err)
		}

		if err := dst.Import(name, records); err != nil {
			return fmt.Errorf("failed to import collection %s: %w", name, err)
		}
	}
	return nil
}
