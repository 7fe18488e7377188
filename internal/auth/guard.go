package auth

import (
	"fmt"
	"strings"

	"github.com/hitoshi/roomfinder/internal/model"
)

// Level はアクセスガードが要求する認可レベル。
type Level int

const (
	// LevelPreRegistration は登録前トークンを含む有効なトークンを要求する。
	LevelPreRegistration Level = iota
	// LevelMember は登録済みユーザーの完全なトークンを要求する。
	LevelMember
	// LevelAdmin はisAdmin=trueの完全なトークンを要求する。
	LevelAdmin
)

// String はメトリクスやログのラベル用の名前を返す。
func (l Level) String() string {
	switch l {
	case LevelPreRegistration:
		return "pre_registration"
	case LevelMember:
		return "member"
	case LevelAdmin:
		return "admin"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// TokenVerifier はトークン検証のインターフェース。
type TokenVerifier interface {
	Parse(tokenString string) (*Claims, error)
}

// Authorize はAuthorizationヘッダーの値を検証し、要求レベルを満たす呼び出し元を返す。
// 署名検証を省略する経路は持たない。
func Authorize(verifier TokenVerifier, authorizationHeader string, required Level) (*model.Caller, error) {
	tokenString, ok := BearerToken(authorizationHeader)
	if !ok {
		return nil, ErrMissingToken
	}

	claims, err := verifier.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	caller := claims.Caller()
	switch required {
	case LevelPreRegistration:
	case LevelMember:
		if claims.IsPreRegistration() {
			return nil, ErrRegistrationRequired
		}
	case LevelAdmin:
		if claims.IsPreRegistration() || !caller.IsAdmin {
			return nil, ErrForbidden
		}
	default:
		return nil, fmt.Errorf("%w: unknown level %d", ErrForbidden, int(required))
	}
	return caller, nil
}

// BearerToken は "Bearer <token>" 形式からトークン部分を取り出す。スキーム名は大文字小文字を区別しない。
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
