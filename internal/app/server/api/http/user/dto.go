package user

type Credentials struct {
	Login    string `json:"login" minLength:"3" maxLength:"32"`
	Password string `json:"password" minLength:"8"`
}

type registerInput struct {
	Body Credentials
}

type registerOutput struct {
	Body RegisterResponse
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type loginInput struct {
	Body Credentials
}

type loginOutput struct {
	Body AuthResponse
}

// AuthResponse is the token pair handed out on login and refresh.
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id,omitempty"`
}

type refreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token"`
	}
}

type refreshOutput struct {
	Body AuthResponse
}
