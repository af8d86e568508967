package ports

// ProjectLocator finds a project root starting from an arbitrary directory.
type ProjectLocator interface {
	FindRoot(startDir string) (string, error)
}

// ProjectInitializer writes a starter configuration into a project directory.
type ProjectInitializer interface {
	Init(root string, force bool) error
}
