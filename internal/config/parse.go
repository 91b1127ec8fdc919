package config

import (
	"encoding/json"

	"github.com/hazyhaar/skillbus/internal/model"
)

// parseFile decodes raw config bytes into a ConfigFile. Absent bytes (nil)
// parse to an empty file with no error. Malformed JSON, or JSON whose
// top-level value isn't an object, yields (nil, false) so the caller can
// warn and treat the file as absent (§4.2 Error handling).
func parseFile(data []byte) (*model.ConfigFile, bool) {
	if len(data) == 0 {
		return &model.ConfigFile{}, true
	}

	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, false
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, false
	}

	var cf model.ConfigFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, false
	}

	for name, ins := range cf.Inserts {
		ins.Name = name
		cf.Inserts[name] = ins
	}

	return &cf, true
}
