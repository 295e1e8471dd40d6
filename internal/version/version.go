package version

// Set via -ldflags at build time.
var (
	Version = "dev"
	Commit  = ""
)

func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + short(Commit) + ")"
}

func short(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}
