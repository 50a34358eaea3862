package replicate

import "github.com/dskvich/snarky-facts/pkg/domain"

var ModelToReplicateModel = map[string]string{
	domain.FluxProUltra11: "black-forest-labs/flux-1.1-pro-ultra",
}

const (
	DefaultAspectRatio  = "3:2"
	DefaultOutputFormat = "png"
)
