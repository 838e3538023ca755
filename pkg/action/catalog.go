package action

import (
	"errors"
	"fmt"
)

// ErrUnknownAction marks callback payloads naming a code the catalog has never
// seen. Callers reject those without dispatching.
var ErrUnknownAction = errors.New("unknown action code")

// Catalog is the registry of action definitions, built once at startup from
// the built-in list plus every plugin-declared action. It is passed by
// reference into every component that resolves actions; there is no ambient
// global registry.
type Catalog struct {
	byCode map[string]Definition
	// codes in registration order, for stable sort ties and custom matcher
	// precedence.
	order         map[string]int
	next          int
	validHandlers map[string]struct{}
}

// NewCatalog builds an empty catalog. When handlerNames is non-nil, Register
// rejects definitions whose Handler is not in the set, turning a bad handler
// name into a boot error instead of a runtime lookup failure.
func NewCatalog(handlerNames map[string]struct{}) *Catalog {
	return &Catalog{
		byCode:        make(map[string]Definition),
		order:         make(map[string]int),
		validHandlers: handlerNames,
	}
}

// Register adds definitions to the catalog. A duplicate code is an error the
// caller must treat as fatal; the catalog never silently overwrites.
func (c *Catalog) Register(defs ...Definition) error {
	for _, def := range defs {
		if def.Code == "" {
			return errors.New("action definition with empty code")
		}
		if _, exists := c.byCode[def.Code]; exists {
			return fmt.Errorf("duplicate action code %q", def.Code)
		}
		if c.validHandlers != nil && def.Handler != "" {
			if _, ok := c.validHandlers[def.Handler]; !ok {
				return fmt.Errorf("action %q references unknown handler %q", def.Code, def.Handler)
			}
		}
		c.byCode[def.Code] = def
		c.order[def.Code] = c.next
		c.next++
	}
	return nil
}

// ByCode resolves a definition.
func (c *Catalog) ByCode(code string) (Definition, bool) {
	def, ok := c.byCode[code]
	return def, ok
}

// Knows reports whether code names a registered action. Used to validate
// inbound button payloads before dispatch.
func (c *Catalog) Knows(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

// Codes returns the set of registered codes.
func (c *Catalog) Codes() map[string]struct{} {
	codes := make(map[string]struct{}, len(c.byCode))
	for code := range c.byCode {
		codes[code] = struct{}{}
	}
	return codes
}

// Custom returns plugin-matched definitions in registration order. The order
// is the matcher precedence when several patterns fire on one message.
func (c *Catalog) Custom() []Definition {
	custom := make([]Definition, 0, 4)
	for _, def := range c.byCode {
		if def.Matcher != nil {
			custom = append(custom, def)
		}
	}
	sortByRegistration(custom, c.order)
	return custom
}

// RegistrationIndex returns the registration position of a code, for stable
// tie-breaks when sorting buttons.
func (c *Catalog) RegistrationIndex(code string) int {
	if idx, ok := c.order[code]; ok {
		return idx
	}
	return c.next
}

func sortByRegistration(defs []Definition, order map[string]int) {
	for i := 1; i < len(defs); i++ {
		for j := i; j > 0 && order[defs[j].Code] < order[defs[j-1].Code]; j-- {
			defs[j], defs[j-1] = defs[j-1], defs[j]
		}
	}
}
