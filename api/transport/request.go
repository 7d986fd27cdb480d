package transport

type RegisterRequest struct {
	UserName string `json:"userName"`
	Mail     string `json:"mail"`
	Password string `json:"password"`
}

type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// TaskRequest carries the client-supplied task fields. On update the name is
// parsed but not applied; only the completion flag is mutable.
type TaskRequest struct {
	Name       string `json:"name"`
	IsComplete bool   `json:"isComplete"`
}
