package version

import "fmt"

// Build metadata, set with -ldflags "-X enterprise-readiness/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ScoringModel identifies the weight and threshold revision the binary was
// built against. Bump it whenever defaults in the scoring or stage packages change.
const ScoringModel = "2026.1"

// String renders the build metadata as printed by the version command.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\nscoring model: %s\n", Version, Commit, BuildDate, ScoringModel)
}
