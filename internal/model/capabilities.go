package model

// WorkspaceContext answers workspace-membership questions for resolved paths.
type WorkspaceContext interface {
	IsPathWithinWorkspace(path string) bool
	Roots() []string
}

// Capabilities is the read-only configuration surface the classifiers query.
// Implementations must be safe for concurrent use.
type Capabilities interface {
	TargetDir() string
	HomeDir() string
	SecurityProfile() SecurityProfile
	ApprovalPIN() string
	TrustedDomains() []string
	CriticalPaths() []string
	Workspace() WorkspaceContext
}
