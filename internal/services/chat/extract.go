package chat

import (
	"fmt"
	"strconv"
	"strings"
)

var contentPath = []interface{}{"choices", 0, "message", "content"}

// extractContent resolves choices[0].message.content in a decoded JSON
// document and requires it to be a string.
func extractContent(doc interface{}) (string, error) {
	value, err := lookup(doc, contentPath...)
	if err != nil {
		return "", err
	}

	content, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %s, not a string", ErrShapeMismatch, formatPath(contentPath), jsonKind(value))
	}
	return content, nil
}

// lookup follows object keys (string) and array indices (int) through a
// value produced by encoding/json.
func lookup(doc interface{}, path ...interface{}) (interface{}, error) {
	current := doc
	for i, segment := range path {
		switch key := segment.(type) {
		case string:
			object, ok := current.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: %s is %s, not an object", ErrShapeMismatch, formatPath(path[:i]), jsonKind(current))
			}
			next, ok := object[key]
			if !ok {
				return nil, fmt.Errorf("%w: %s is missing", ErrShapeMismatch, formatPath(path[:i+1]))
			}
			current = next
		case int:
			array, ok := current.([]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: %s is %s, not an array", ErrShapeMismatch, formatPath(path[:i]), jsonKind(current))
			}
			if key < 0 || key >= len(array) {
				return nil, fmt.Errorf("%w: %s is out of range (length %d)", ErrShapeMismatch, formatPath(path[:i+1]), len(array))
			}
			current = array[key]
		default:
			return nil, fmt.Errorf("unsupported path segment %T", segment)
		}
	}
	return current, nil
}

func formatPath(path []interface{}) string {
	if len(path) == 0 {
		return "response"
	}

	var b strings.Builder
	for _, segment := range path {
		switch key := segment.(type) {
		case string:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(key)
		case int:
			b.WriteString("[" + strconv.Itoa(key) + "]")
		}
	}
	return b.String()
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	case []interface{}:
		return "an array"
	case map[string]interface{}:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
