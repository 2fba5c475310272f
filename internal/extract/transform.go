package extract

import (
	"fmt"
	"strings"

	"github.com/papapumpkin/textage/internal/rules"
)

// TransformLine converts one captured interior line into a JSON fragment.
//
// Keyed lines are split on the first ':'; the key keeps its text with single
// quotes turned into double quotes and the rules are applied to the value
// alone. Plain lines are trimmed and passed through the rules whole.
func TransformLine(line string, shape rules.LineShape, rs []rules.TransformRule) (string, error) {
	switch shape {
	case rules.KeyedEntries:
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return "", fmt.Errorf("%w: no ':' in %q", ErrMalformedLine, line)
		}
		key = strings.ReplaceAll(strings.TrimSpace(key), "'", `"`)
		value = rules.Apply(strings.TrimSpace(value), rs)
		return key + ":" + value, nil
	case rules.PlainEntries:
		return rules.Apply(strings.TrimSpace(line), rs), nil
	default:
		return "", fmt.Errorf("extract: unsupported line shape %v", shape)
	}
}
