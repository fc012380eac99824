package cli

import (
	"context"

	"github.com/signalsfoundry/debris-tracker/internal/classify"
	"github.com/signalsfoundry/debris-tracker/internal/logging"
	"github.com/signalsfoundry/debris-tracker/internal/tle"
	"github.com/signalsfoundry/debris-tracker/kb"
	"github.com/signalsfoundry/debris-tracker/model"
)

// loadCatalog gathers the famous satellites (optionally) followed by the
// configured group. Names are unique; a later entry replaces an earlier one
// in place.
func (a *app) loadCatalog(ctx context.Context, group string, famous bool) (*kb.Catalog, error) {
	ctx, span := tracer.Start(ctx, "cli.loadCatalog")
	defer span.End()

	catalog := kb.NewCatalog()
	if famous {
		objs, err := tle.LoadFamous(ctx, a.fetcher(), nil, a.cfg.TLE.FamousFile, a.log)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			a.log.Warn(ctx, "famous satellites unavailable", logging.Err(err))
		}
		catalog.Merge(objs...)
	}

	res, err := a.source().Load(ctx, group)
	if err != nil {
		return nil, err
	}
	added := catalog.Merge(res.Objects...)

	a.log.Info(ctx, "satellites loaded",
		logging.String("group", group),
		logging.String("origin", string(res.Origin)),
		logging.Int("from_group", len(res.Objects)),
		logging.Int("new", added),
		logging.Int("total", catalog.Len()),
	)
	return catalog, nil
}

// classifier returns the configured model, the built-in one when no path
// is set, or nil when classification is disabled or the model cannot load.
func (a *app) classifier(ctx context.Context) *classify.Model {
	if !a.cfg.Classifier.Enabled {
		return nil
	}
	if a.cfg.Classifier.ModelPath == "" {
		return classify.Default()
	}
	m, err := classify.LoadFile(a.cfg.Classifier.ModelPath)
	if err != nil {
		a.log.Warn(ctx, "classifier model not available; skipping classification",
			logging.String("path", a.cfg.Classifier.ModelPath),
			logging.Err(err),
		)
		return nil
	}
	return m
}

// classifyCatalog classifies every catalog entry in place and returns the
// per-label summary, or nil when no model is available.
func (a *app) classifyCatalog(ctx context.Context, catalog *kb.Catalog) classify.Summary {
	objects, summary := a.annotate(ctx, catalog.List())
	if summary == nil {
		return nil
	}
	for _, obj := range objects {
		if err := catalog.Replace(obj); err != nil {
			a.log.Warn(ctx, "classified object left the catalog", logging.Err(err))
		}
	}
	return summary
}

// annotate classifies objects when a model is available.
func (a *app) annotate(ctx context.Context, objects []model.SpaceObject) ([]model.SpaceObject, classify.Summary) {
	m := a.classifier(ctx)
	if m == nil {
		return objects, nil
	}
	out, summary := classify.Annotate(objects, m)
	a.log.Info(ctx, "classification summary", logging.String("counts", summary.String()))
	return out, summary
}
