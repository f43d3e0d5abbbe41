package costs

import (
	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/routers"
)

// Calculator quotes legacy costs against a bound catalog and router path.
// It is immutable and safe for concurrent use; build a new one to change
// either input.
type Calculator struct {
	// catalog is the model catalog used for lookups
	catalog *catalog.Catalog

	// path is the router path applied to every quote
	path routers.RouterPath
}

// Quote is a Composition annotated with the model it was priced against.
type Quote struct {
	Composition

	ModelID string  `json:"model_id"`
	Tokens  float64 `json:"tokens"`
}

// NewCalculator creates a new calculator.
func NewCalculator(cat *catalog.Catalog, path routers.RouterPath) *Calculator {
	return &Calculator{
		catalog: cat,
		path:    path,
	}
}

// Quote prices tokens against modelID. Unknown models return a
// calcerr.ModelNotFoundError.
func (c *Calculator) Quote(modelID string, tokens float64) (*Quote, error) {
	model, err := c.catalog.Lookup(modelID)
	if err != nil {
		return nil, err
	}

	comp, err := ComposeCost(tokens, model, c.path)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Composition: comp,
		ModelID:     modelID,
		Tokens:      tokens,
	}, nil
}

// RouterPath returns the router path applied to every quote.
func (c *Calculator) RouterPath() routers.RouterPath {
	return c.path
}
