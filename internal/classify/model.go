package classify

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/signalsfoundry/debris-tracker/model"
)

// ErrNoModel is returned when no classifier model could be loaded.
var ErrNoModel = errors.New("classifier model not available")

//go:embed default_model.json
var defaultModelJSON []byte

// Class is one centroid of the nearest-centroid model. Scale normalises each
// feature's distance contribution and must be positive.
type Class struct {
	Label    string    `json:"label"`
	Centroid []float64 `json:"centroid"`
	Scale    []float64 `json:"scale"`
}

// Model is a nearest-centroid classifier over orbital features. Confidence
// is the softmax share of the winning class over exp(-d²/2).
type Model struct {
	Features []string `json:"features"`
	Classes  []Class  `json:"classes"`
}

// Load decodes and validates a model from r.
func Load(r io.Reader) (*Model, error) {
	var m Model
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode classifier model: %w", err)
	}
	if len(m.Features) == 0 {
		m.Features = append([]string(nil), DefaultFeatures...)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile reads a model from path. A missing file yields ErrNoModel.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found", ErrNoModel, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open classifier model: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in model.
func Default() *Model {
	m, err := Load(bytes.NewReader(defaultModelJSON))
	if err != nil {
		panic(fmt.Sprintf("built-in classifier model: %v", err))
	}
	return m
}

func (m *Model) validate() error {
	if len(m.Classes) == 0 {
		return fmt.Errorf("%w: model has no classes", ErrNoModel)
	}
	for _, name := range m.Features {
		if math.IsNaN(Features{}.Get(name)) {
			return fmt.Errorf("unknown feature %q", name)
		}
	}
	n := len(m.Features)
	for _, c := range m.Classes {
		if c.Label == "" {
			return errors.New("class with empty label")
		}
		if len(c.Centroid) != n || len(c.Scale) != n {
			return fmt.Errorf("class %q: centroid/scale length must be %d", c.Label, n)
		}
		for i, s := range c.Scale {
			if !(s > 0) {
				return fmt.Errorf("class %q: scale[%d] must be positive", c.Label, i)
			}
		}
	}
	return nil
}

// Unknown is the verdict for objects that cannot be classified.
var Unknown = model.Classification{Label: model.ClassUnknown, Confidence: 0}

// Predict classifies a feature vector. Incomplete features give Unknown.
func (m *Model) Predict(f Features) model.Classification {
	if m == nil || len(m.Classes) == 0 {
		return Unknown
	}
	x := make([]float64, len(m.Features))
	for i, name := range m.Features {
		v := f.Get(name)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Unknown
		}
		x[i] = v
	}

	dist := make([]float64, len(m.Classes))
	best := 0
	for k, c := range m.Classes {
		var d float64
		for i := range x {
			z := (x[i] - c.Centroid[i]) / c.Scale[i]
			d += z * z
		}
		dist[k] = d
		if d < dist[best] {
			best = k
		}
	}

	// Shift by the best distance so the winning term is exp(0).
	var sum float64
	for _, d := range dist {
		sum += math.Exp(-(d - dist[best]) / 2)
	}
	return model.Classification{Label: m.Classes[best].Label, Confidence: 1 / sum}
}

// Classify extracts features from obj and predicts its class.
func (m *Model) Classify(obj model.SpaceObject) model.Classification {
	return m.Predict(Extract(obj.Elements))
}
