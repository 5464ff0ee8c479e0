// Package dto defines the request and response bodies of the auth endpoints.
package dto

// SignupReq is the body of POST /signup.
type SignupReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginReq is the body of POST /login.
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginForm is the HTML login form.
type LoginForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// RegisterForm is the HTML registration form.
type RegisterForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=8"`
	Confirm  string `form:"confirm" binding:"required,eqfield=Password"`
}
