package kb

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/debris-tracker/model"
)

// Catalog is an in-memory, thread-safe, insertion-ordered set of space
// objects keyed by name.
type Catalog struct {
	mu sync.RWMutex

	order   []string
	objects map[string]model.SpaceObject
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		objects: make(map[string]model.SpaceObject),
	}
}

// Merge upserts objects by name. An existing name keeps its position and
// takes the newer element set. It returns how many names were new.
func (c *Catalog) Merge(objs ...model.SpaceObject) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, obj := range objs {
		if obj.Name == "" {
			continue
		}
		if _, exists := c.objects[obj.Name]; !exists {
			c.order = append(c.order, obj.Name)
			added++
		}
		c.objects[obj.Name] = obj
	}
	return added
}

// Replace swaps the stored object with the same name, e.g. after
// classification. It returns an error if the name is unknown.
func (c *Catalog) Replace(obj model.SpaceObject) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.objects[obj.Name]; !ok {
		return fmt.Errorf("object %q not found", obj.Name)
	}
	c.objects[obj.Name] = obj
	return nil
}

// Len returns the number of objects.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// List returns a snapshot of all objects in insertion order.
func (c *Catalog) List() []model.SpaceObject {
	return c.Limit(0)
}

// Limit returns the first n objects in insertion order; n <= 0 means all.
func (c *Catalog) Limit(n int) []model.SpaceObject {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n <= 0 || n > len(c.order) {
		n = len(c.order)
	}
	res := make([]model.SpaceObject, 0, n)
	for _, name := range c.order[:n] {
		res = append(res, c.objects[name])
	}
	return res
}
