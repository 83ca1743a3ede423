package rest

import "vision-classifier/internal/domain/entity"

// PredictResponse ответ POST /predict
type PredictResponse struct {
	Label          string             `json:"label"`
	Index          int                `json:"index"`
	Confidence     float64            `json:"confidence"`
	AllPredictions map[string]float64 `json:"all_predictions"`
}

// HealthResponse ответ GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Labels int    `json:"labels"`
}

// ErrorResponse тело любой ошибки
type ErrorResponse struct {
	Error string `json:"error"`
}

func newPredictResponse(res *entity.ClassificationResult) PredictResponse {
	return PredictResponse{
		Label:          res.Label,
		Index:          res.Index,
		Confidence:     res.Confidence,
		AllPredictions: res.Distribution.Map(),
	}
}
