package circuit

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// definitionsFile is the top-level layout of the circuits YAML file.
type definitionsFile struct {
	Circuits []Definition `yaml:"circuits"`
}

// LoadDefinitions reads circuit definitions from a YAML file and validates
// each one against the device registry.
//
// A definition that fails validation (including one using the competition
// ordering mode) is left out of the catalog; the problems are returned
// joined in the error. The catalog holds every valid definition and is
// non-nil whenever the file itself could be read and parsed.
//
// Parameters:
//   - path: Path to the circuits YAML file
//   - devices: Device registry used to check step devices and gestures
//
// Returns:
//   - *Catalog: Valid definitions, in file order
//   - error: Read/parse failure (nil catalog) or joined per-definition errors
func LoadDefinitions(path string, devices DeviceLookup) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading circuits file: %w", err)
	}
	return ParseDefinitions(data, devices)
}

// ParseDefinitions is LoadDefinitions for in-memory YAML.
func ParseDefinitions(data []byte, devices DeviceLookup) (*Catalog, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing circuits file: %w", err)
	}

	catalog := NewCatalog()
	var errs []error
	for i := range file.Circuits {
		def := file.Circuits[i]
		def.normalize()
		if err := def.Validate(devices); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := catalog.add(&def); err != nil {
			errs = append(errs, err)
		}
	}

	return catalog, errors.Join(errs...)
}

// Catalog is the immutable set of loaded definitions.
type Catalog struct {
	defs  map[string]*Definition
	order []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]*Definition)}
}

// NewCatalogFrom builds a catalog from already validated definitions.
// Definitions are normalized; duplicate ids are an error.
func NewCatalogFrom(defs ...Definition) (*Catalog, error) {
	c := NewCatalog()
	for i := range defs {
		def := defs[i]
		def.normalize()
		if err := c.add(&def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) add(def *Definition) error {
	if _, exists := c.defs[def.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCircuit, def.ID)
	}
	c.defs[def.ID] = def
	c.order = append(c.order, def.ID)
	return nil
}

// Get returns the definition with the given id.
func (c *Catalog) Get(id string) (*Definition, error) {
	def, ok := c.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCircuitNotFound, id)
	}
	return def, nil
}

// Has reports whether a definition id exists.
func (c *Catalog) Has(id string) bool {
	_, ok := c.defs[id]
	return ok
}

// List returns all definitions in file order.
func (c *Catalog) List() []*Definition {
	out := make([]*Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.defs[id])
	}
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.order)
}
