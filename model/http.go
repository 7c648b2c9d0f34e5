package model

type StatusResponse struct {
	Engine EngineStatus `json:"engine"`
	Looper LooperStatus `json:"looper"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
