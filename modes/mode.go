package modes

type Mode string

const (
	ModeProduction  Mode = "production"
	ModeDevelopment Mode = "development"
)

// WorkDir is the directory relative paths in configs resolve against.
type WorkDir string
