package render

import (
	"encoding/json"

	"github.com/vvka-141/twbmig/internal/extract"
)

// JSON renders the full result, indented.
func JSON(r *extract.Result) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
