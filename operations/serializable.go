package operations

import (
	"encoding/json"
	"fmt"

	"github.com/smartcontractkit/near-deployments-framework/pkg/logger"
)

// IsSerializable reports whether v can be recorded in a Report, i.e. whether it round trips
// through encoding/json without error.
func IsSerializable(lggr logger.Logger, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		lggr.Errorw("Value is not JSON serializable", "type", fmt.Sprintf("%T", v), "error", err)
		return false
	}

	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		lggr.Errorw("Value does not unmarshal from its own JSON", "type", fmt.Sprintf("%T", v), "error", err)
		return false
	}

	return true
}
