package composer

import (
	"fmt"

	"github.com/adaptivebank/genui/internal/uischema"
)

// checkPolicy enforces the controller-level invariant on accepted schemas:
// exactly one Balances and exactly one ActionGrid section, regardless of
// origin. The validator deliberately does not know about this rule; it is
// composition policy, not wire structure.
func checkPolicy(schema *uischema.UISchema) error {
	for _, required := range []uischema.Component{
		uischema.ComponentBalances,
		uischema.ComponentActionGrid,
	} {
		if n := schema.CountComponent(required); n != 1 {
			return fmt.Errorf("schema must contain exactly one %s section, got %d", required, n)
		}
	}
	return nil
}
