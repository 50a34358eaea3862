package huggingface

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}
