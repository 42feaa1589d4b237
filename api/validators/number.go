package validators

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Number accepts a JSON number or a numeric string. An empty string or null
// leaves it unset.
type Number struct {
	Value decimal.Decimal
	Set   bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*n = Number{}
			return nil
		}
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%q is not a number", raw)
	}
	*n = Number{Value: value, Set: true}
	return nil
}

// IsZero reports whether the number is unset or zero.
func (n Number) IsZero() bool {
	return !n.Set || n.Value.IsZero()
}

// Int truncates toward zero.
func (n Number) Int() int {
	return int(n.Value.IntPart())
}
