package dto

type UserListResponse struct {
	Users  []UserResponse `json:"users"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type SettingRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"` // string, bool, int, json
}
