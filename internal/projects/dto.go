package projects

// CreateProjectRequest is the body of POST /project.
type CreateProjectRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CreateProjectResponse returns the new project id.
type CreateProjectResponse struct {
	ProjectID int64 `json:"project_id"`
}

// RenameProjectRequest is the body of POST /project/{name}. The field
// carries the new name.
type RenameProjectRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// UpdateResponse acknowledges a successful mutation.
type UpdateResponse struct {
	Message string `json:"message"`
}

// ProjectInfoResponse is the caller's view of a project: its name and the
// caller's effective rights on it.
type ProjectInfoResponse struct {
	Name  string `json:"name"`
	Grant bool   `json:"grant"`
	Read  bool   `json:"read"`
	Write bool   `json:"write"`
}

const updateSuccess = "update-success"
