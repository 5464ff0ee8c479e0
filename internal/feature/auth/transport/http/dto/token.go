package dto

// RefreshReq is the body of POST /refresh.
type RefreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenRes is returned by /login and /refresh.
type TokenRes struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
