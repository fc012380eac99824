package tle

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/signalsfoundry/debris-tracker/internal/logging"
	"github.com/signalsfoundry/debris-tracker/model"
)

// FamousNames lists well-known satellites that are always worth tracking.
var FamousNames = []string{
	"ISS (ZARYA)",
	"HUBBLE SPACE TELESCOPE",
	"LANDSAT 8",
	"SENTINEL-2A",
	"STARLINK-1130",
}

// LoadFamous looks each name up online. Names that fail are logged and
// skipped. If nothing could be fetched the objects in fallbackPath are used
// instead; a missing fallback file yields an empty result, not an error.
func LoadFamous(ctx context.Context, f *Fetcher, names []string, fallbackPath string, log logging.Logger) ([]model.SpaceObject, error) {
	if log == nil {
		log = logging.Noop()
	}
	if len(names) == 0 {
		names = FamousNames
	}

	var objects []model.SpaceObject
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		obj, err := f.FetchByName(ctx, name)
		if err != nil {
			log.Warn(ctx, "failed to fetch TLE by name",
				logging.String("name", name),
				logging.Err(err),
			)
			continue
		}
		objects = append(objects, obj)
	}
	if len(objects) > 0 {
		log.Info(ctx, "loaded famous satellites", logging.Int("count", len(objects)))
		return objects, nil
	}

	if fallbackPath == "" {
		return nil, nil
	}
	log.Warn(ctx, "no famous satellites loaded online, trying fallback file",
		logging.String("path", fallbackPath),
	)
	file, err := os.Open(fallbackPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open famous fallback: %w", err)
	}
	defer file.Close()
	return Parse(ctx, file, log)
}
