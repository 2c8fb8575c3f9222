package models

const (
	SyncStatusSynced    = "Synced"
	SyncStatusOutOfSync = "OutOfSync"
)

// Application represents an Argo CD application as returned by the API
type Application struct {
	Metadata ApplicationMetadata `json:"metadata"`
	Spec     ApplicationSpec     `json:"spec"`
	Status   ApplicationStatus   `json:"status"`
}

type ApplicationMetadata struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

type ApplicationSpec struct {
	Project     string                 `json:"project,omitempty"`
	Source      ApplicationSource      `json:"source"`
	Destination ApplicationDestination `json:"destination"`
}

// ApplicationSource is where the manifests of the application live
type ApplicationSource struct {
	RepoURL        string `json:"repoURL"`
	Path           string `json:"path,omitempty"`
	TargetRevision string `json:"targetRevision,omitempty"`
}

type ApplicationDestination struct {
	Server    string `json:"server,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name,omitempty"`
}

type ApplicationStatus struct {
	Sync   SyncStatus   `json:"sync"`
	Health HealthStatus `json:"health"`
}

type SyncStatus struct {
	Status string `json:"status"`
}

type HealthStatus struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// ApplicationList is the body of GET /api/v1/applications
type ApplicationList struct {
	Items []Application `json:"items"`
}

func (a Application) Name() string {
	return a.Metadata.Name
}

// InSync reports whether the live state matched the desired state when the inventory was fetched.
// Anything other than an explicit OutOfSync (e.g. Unknown) is treated as in sync.
func (a Application) InSync() bool {
	return a.Status.Sync.Status != SyncStatusOutOfSync
}
