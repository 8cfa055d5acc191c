package hermes

import "time"

type StrategyScore struct {
	Strategy string  `json:"strategy"`
	Score    float64 `json:"score"`
}

type EvaluationCompletedEvent struct {
	RecordID        string          `json:"record_id"`
	IntegrationPair string          `json:"integration_pair_name"`
	Best            string          `json:"best"`
	Tied            []string        `json:"tied,omitempty"`
	Results         []StrategyScore `json:"results"`
	WeightsRescaled bool            `json:"weights_rescaled"`
	Timestamp       time.Time       `json:"timestamp"`
}

type EvaluationFailedEvent struct {
	IntegrationPair string    `json:"integration_pair_name"`
	Kind            string    `json:"kind"`
	Error           string    `json:"error"`
	Timestamp       time.Time `json:"timestamp"`
}
