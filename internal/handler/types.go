package handler

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
}
