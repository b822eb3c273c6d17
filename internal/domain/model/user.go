package model

// User 認証済みユーザー
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// DisplayName 登録者として表示する名前
func (u *User) DisplayName() string {
	if u == nil || u.Username == "" {
		return AnonymousCreator
	}
	return u.Username
}

// AuthStatus 認証状態（画面ごとに明示的に受け渡す）
type AuthStatus struct {
	SignedIn bool
	User     *User
}

// SignedOut 未ログイン状態
func SignedOut() AuthStatus {
	return AuthStatus{}
}

// SignedInAs ログイン状態
func SignedInAs(user *User) AuthStatus {
	return AuthStatus{SignedIn: user != nil, User: user}
}
