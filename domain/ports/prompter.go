package ports

// Prompter handles the interactive module selection menu.
type Prompter interface {
	// IsInteractive returns true if running in an interactive terminal.
	IsInteractive() bool

	// SelectModule prints a numbered menu of candidates and returns the
	// zero-based index of the chosen entry.
	SelectModule(candidates []string) (int, error)

	// Progress reports a setup step to the user.
	Progress(msg string)
}
