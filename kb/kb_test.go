package kb

import (
	"fmt"
	"sync"
	"testing"

	"github.com/signalsfoundry/debris-tracker/model"
)

func TestMergeSkipsEmptyNames(t *testing.T) {
	c := NewCatalog()
	if added := c.Merge(model.SpaceObject{}, model.SpaceObject{Name: "ISS (ZARYA)", NoradID: 25544}); added != 1 {
		t.Fatalf("Merge added %d, want 1", added)
	}
	if got := c.List(); len(got) != 1 || got[0].NoradID != 25544 {
		t.Fatalf("List = %+v, want only ISS", got)
	}
}

func TestMergeKeepsPositionAndTakesNewest(t *testing.T) {
	c := NewCatalog()
	added := c.Merge(
		model.SpaceObject{Name: "A", NoradID: 1},
		model.SpaceObject{Name: "B", NoradID: 2},
	)
	if added != 2 {
		t.Fatalf("first Merge added %d, want 2", added)
	}

	added = c.Merge(
		model.SpaceObject{Name: "C", NoradID: 3},
		model.SpaceObject{Name: "A", NoradID: 10},
	)
	if added != 1 {
		t.Fatalf("second Merge added %d, want 1", added)
	}

	list := c.List()
	if len(list) != 3 {
		t.Fatalf("len(List) = %d, want 3", len(list))
	}
	if list[0].Name != "A" || list[0].NoradID != 10 {
		t.Fatalf("A should keep slot 0 with new NORAD id, got %+v", list[0])
	}
	if list[1].Name != "B" || list[2].Name != "C" {
		t.Fatalf("unexpected order %v, %v", list[1].Name, list[2].Name)
	}
}

func TestLimitAndReplace(t *testing.T) {
	c := NewCatalog()
	for i := range 5 {
		c.Merge(model.SpaceObject{Name: fmt.Sprintf("OBJ-%d", i)})
	}
	if got := c.Limit(2); len(got) != 2 || got[1].Name != "OBJ-1" {
		t.Fatalf("Limit(2) = %+v", got)
	}
	if got := c.Limit(99); len(got) != 5 {
		t.Fatalf("Limit(99) len = %d, want 5", len(got))
	}

	classified := model.SpaceObject{Name: "OBJ-3"}.WithClass(model.Classification{Label: model.ClassDebris, Confidence: 0.9})
	if err := c.Replace(classified); err != nil {
		t.Fatalf("Replace error: %v", err)
	}
	if got := c.List()[3]; got.Label() != model.ClassDebris {
		t.Fatalf("label = %q, want Debris", got.Label())
	}
	if err := c.Replace(model.SpaceObject{Name: "missing"}); err == nil {
		t.Fatalf("expected Replace of unknown name to fail")
	}
}

func TestConcurrentMerge(t *testing.T) {
	c := NewCatalog()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 50 {
				c.Merge(model.SpaceObject{Name: fmt.Sprintf("w%d-%d", i, j)})
			}
		}(i)
	}
	wg.Wait()
	if c.Len() != 400 {
		t.Fatalf("Len = %d, want 400", c.Len())
	}
}
