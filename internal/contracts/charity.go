package contracts

type CharityCreateRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	Email       string `json:"email" binding:"required,email"`
}

type CharityUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Email       *string `json:"email" binding:"omitempty,email"`
}
