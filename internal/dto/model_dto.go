package dto

// TrainedModelResponse describes one trained per-SKU model artifact.
type TrainedModelResponse struct {
	SKU             string             `json:"sku"`
	ModelType       string             `json:"model_type"`
	Version         string             `json:"version"`
	FeatureCount    int                `json:"feature_count"`
	Metrics         map[string]float64 `json:"metrics"`
	TrainingSamples int                `json:"training_samples"`
	TrainedAt       string             `json:"trained_at"`
}

type TrainedModelListResponse struct {
	Data []TrainedModelResponse `json:"data"`
}
