package instance

import "github.com/angelmondragon/shipcalc-backend/pkg/env"

// GetID returns the identifier of this API process for log correlation. The
// platform dyno name wins over the explicit override.
func GetID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	return env.Get("SHIPCALC_INSTANCE_ID", "local")
}
