package domain

const (
	SDXLBase10Model = "stabilityai/stable-diffusion-xl-base-1.0"
	FluxProUltra11  = "black-forest-labs/flux-1.1-pro-ultra"
)
