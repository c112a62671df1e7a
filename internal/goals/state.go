package goals

import (
	"encoding/json"
	"os"

	"RetentionSentinel/internal/model"
)

// fileState is the on-disk layout of the goal store.
type fileState struct {
	Goals []model.Goal `json:"goals"`
}

// LoadState reads goals from a JSON file. Returns no goals if the file doesn't exist.
func LoadState(filePath string) ([]model.Goal, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return state.Goals, nil
}

// SaveState writes goals to a JSON file.
func SaveState(filePath string, goals []model.Goal) error {
	data, err := json.MarshalIndent(fileState{Goals: goals}, "", "  ")
	if err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
