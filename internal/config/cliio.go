package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hazyhaar/skillbus/internal/model"
)

// ReadFile loads and parses one configuration file for the CLI
// collaborator. Unlike Load, this returns a real error — skillbusctl is a
// read-modify-write tool and must refuse to proceed on a file it cannot
// understand (§5 "refuses to overwrite a malformed file"), where dispatch
// would instead warn and treat it as absent.
func ReadFile(path string) (*model.ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.ConfigFile{}, nil
		}
		return nil, err
	}
	cf, ok := parseFile(data)
	if !ok {
		return nil, fmt.Errorf("%s: malformed JSON, fix JSON syntax first", path)
	}
	return cf, nil
}

// WriteFile re-serializes cf and writes it atomically enough for a
// single-user CLI: write to a temp file in the same directory, then rename.
func WriteFile(path string, cf *model.ConfigFile) error {
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
