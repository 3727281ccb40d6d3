package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier は設定された管理者資格情報とログイン入力を照合する。
//
// ユーザー名は大文字小文字を区別する完全一致。比較は定数時間で行う。
// パスワードハッシュ（bcrypt）が設定されている場合は平文パスワードより優先する。
type CredentialVerifier struct {
	username     []byte
	password     []byte
	passwordHash []byte
}

// NewCredentialVerifier はCredentialVerifierを生成する。
// passwordHashが空の場合は平文passwordと比較する。
func NewCredentialVerifier(username, password, passwordHash string) *CredentialVerifier {
	return &CredentialVerifier{
		username:     []byte(username),
		password:     []byte(password),
		passwordHash: []byte(passwordHash),
	}
}

// Verify はusernameとpasswordが設定値と一致する場合にtrueを返す。
func (v *CredentialVerifier) Verify(username, password string) bool {
	if username == "" || password == "" || len(v.username) == 0 {
		return false
	}

	// ユーザー名が不一致でもパスワード比較は実行し、応答時間から一致を推測されにくくする
	userOK := subtle.ConstantTimeCompare([]byte(username), v.username) == 1

	var passOK bool
	switch {
	case len(v.passwordHash) > 0:
		passOK = bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password)) == nil
	case len(v.password) > 0:
		passOK = subtle.ConstantTimeCompare([]byte(password), v.password) == 1
	}

	return userOK && passOK
}
