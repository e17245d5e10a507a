package actionprofile

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// DecodeArgs parses a raw JSON argument object as emitted by a model.
// Malformed JSON is repaired once; repaired reports whether that happened.
func DecodeArgs(raw string) (args map[string]any, repaired bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err == nil {
		return args, false, nil
	}

	fixed, rerr := jsonrepair.JSONRepair(raw)
	if rerr != nil {
		return nil, false, fmt.Errorf("decode tool arguments: %w", rerr)
	}
	args = nil
	if err := json.Unmarshal([]byte(fixed), &args); err != nil {
		return nil, false, fmt.Errorf("decode repaired tool arguments: %w", err)
	}
	if args == nil {
		return nil, false, fmt.Errorf("decode tool arguments: not a JSON object")
	}
	return args, true, nil
}

// stringArg returns the first non-empty string value among keys.
func stringArg(args map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := args[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// stringsArg returns string values under the first key holding a list,
// or a single string value.
func stringsArg(args map[string]any, keys ...string) []string {
	for _, k := range keys {
		switch v := args[k].(type) {
		case []any:
			var out []string
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		case []string:
			if len(v) > 0 {
				return v
			}
		case string:
			if strings.TrimSpace(v) != "" {
				return []string{v}
			}
		}
	}
	return nil
}

// boolArg accepts real booleans and their common string spellings.
func boolArg(args map[string]any, keys ...string) bool {
	for _, k := range keys {
		switch v := args[k].(type) {
		case bool:
			if v {
				return true
			}
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "yes", "1":
				return true
			}
		}
	}
	return false
}

// argValueText flattens argument values (not keys) into one string,
// in key order so the result is deterministic.
func argValueText(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		writeValue(&b, args[k])
	}
	return b.String()
}

func writeValue(b *strings.Builder, v any) {
	switch x := v.(type) {
	case string:
		b.WriteString(x)
		b.WriteByte(' ')
	case []any:
		for _, item := range x {
			writeValue(b, item)
		}
	case []string:
		for _, item := range x {
			b.WriteString(item)
			b.WriteByte(' ')
		}
	case map[string]any:
		b.WriteString(argValueText(x))
	case nil:
	default:
		fmt.Fprintf(b, "%v ", x)
	}
}

// ArgValueText exposes the flattened argument text for the intention classifier.
func ArgValueText(args map[string]any) string {
	return argValueText(args)
}
