package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskScanRun = "scans.run"

// ScanPayload describe una corrida del pipeline encolada.
type ScanPayload struct {
	RunType  string `json:"runType"`
	Query    string `json:"query"`
	Location string `json:"location"`
}

func NewScanTask(payload ScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScanRun, data), nil
}

func ParseScanPayload(task *asynq.Task) (ScanPayload, error) {
	var payload ScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ScanPayload{}, err
	}
	return payload, nil
}
