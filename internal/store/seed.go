package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/musecraft/musecraft/internal/core/model"
)

var seedGenres = []string{
	"Rock", "Electronic", "Hip-Hop", "Jazz", "Classical",
	"Ambient", "Metal", "Folk", "R&B", "Punk",
	"Country", "Blues", "Soul", "Reggae", "Indie",
}

var seedArtists = []string{
	"Radiohead", "Kendrick Lamar", "Björk", "Aphex Twin", "Daft Punk",
	"Tame Impala", "Frank Ocean", "Bon Iver", "Flying Lotus", "Portishead",
	"LCD Soundsystem", "Beach House", "Massive Attack", "Boards of Canada", "Burial",
	"King Krule", "Tyler, The Creator", "FKA Twigs", "James Blake", "Grimes",
	"Mac DeMarco", "Car Seat Headrest", "Thundercat", "Anderson .Paak", "Daniel Caesar",
}

// Seed creates the base palette of genres and artists. Existing names
// are left untouched, so reseeding is safe.
func (s *GraphStore) Seed(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	created := 0

	for _, name := range seedGenres {
		ok, err := s.seedElement(ctx, &model.Element{
			ID:          uuid.New().String(),
			Name:        name,
			Type:        model.TypeGenre,
			SearchQuery: fmt.Sprintf("genre:%s", strings.ToLower(name)),
			Seed:        true,
			CreatedAt:   now,
		})
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	for _, name := range seedArtists {
		ok, err := s.seedElement(ctx, &model.Element{
			ID:          uuid.New().String(),
			Name:        name,
			Type:        model.TypeArtist,
			SearchQuery: name,
			Seed:        true,
			CreatedAt:   now,
		})
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	return created, nil
}

func (s *GraphStore) seedElement(ctx context.Context, el *model.Element) (bool, error) {
	existing, err := s.GetElementByName(ctx, el.Name)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if err := s.SaveElement(ctx, el); err != nil {
		return false, err
	}
	return true, nil
}
