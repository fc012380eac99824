package classify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/signalsfoundry/debris-tracker/internal/logging"
	"github.com/signalsfoundry/debris-tracker/model"
)

// Labels lists every label in summary order.
var Labels = []string{model.ClassPayload, model.ClassRocketBody, model.ClassDebris, model.ClassUnknown}

// Summary counts objects per label.
type Summary map[string]int

// String renders the counts in Labels order, e.g. "Payload=3 Rocket Body=1".
func (s Summary) String() string {
	parts := make([]string, 0, len(s))
	seen := make(map[string]bool, len(Labels))
	for _, l := range Labels {
		seen[l] = true
		parts = append(parts, fmt.Sprintf("%s=%d", l, s[l]))
	}
	var extra []string
	for l := range s {
		if !seen[l] {
			extra = append(extra, l)
		}
	}
	sort.Strings(extra)
	for _, l := range extra {
		parts = append(parts, fmt.Sprintf("%s=%d", l, s[l]))
	}
	return strings.Join(parts, " ")
}

// Annotate returns copies of objects with a classification attached. A nil
// model labels everything Unknown.
func Annotate(objects []model.SpaceObject, m *Model) ([]model.SpaceObject, Summary) {
	out := make([]model.SpaceObject, len(objects))
	summary := make(Summary, len(Labels))
	for i, obj := range objects {
		c := Unknown
		if m != nil {
			c = m.Classify(obj)
		}
		out[i] = obj.WithClass(c)
		summary[c.Label]++
	}
	return out, summary
}

// Filter selects objects by classification before a sweep. The zero value
// keeps everything.
type Filter struct {
	IncludeTypes  []string
	MinConfidence float64
}

// Active reports whether the filter removes anything.
func (f Filter) Active() bool {
	return len(f.IncludeTypes) > 0 || f.MinConfidence > 0
}

// Keep reports whether obj passes. An unclassified object fails a type
// filter but is treated as fully confident.
func (f Filter) Keep(obj model.SpaceObject) bool {
	if len(f.IncludeTypes) > 0 {
		if obj.Class == nil {
			return false
		}
		match := false
		for _, t := range f.IncludeTypes {
			if strings.EqualFold(strings.TrimSpace(t), obj.Class.Label) {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	if f.MinConfidence > 0 && obj.Class != nil && obj.Class.Confidence < f.MinConfidence {
		return false
	}
	return true
}

// Apply returns the objects that pass, logging each one dropped.
func (f Filter) Apply(ctx context.Context, objects []model.SpaceObject, log logging.Logger) []model.SpaceObject {
	if !f.Active() {
		return objects
	}
	if log == nil {
		log = logging.Noop()
	}
	kept := make([]model.SpaceObject, 0, len(objects))
	for _, obj := range objects {
		if f.Keep(obj) {
			kept = append(kept, obj)
			continue
		}
		log.Debug(ctx, "skipping object",
			logging.String("object", obj.Name),
			logging.String("reason", "filtered by classification"),
			logging.String("label", obj.Label()),
		)
	}
	return kept
}
