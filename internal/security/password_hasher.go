package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher はパスワードの一方向ハッシュ化と照合を行う。
type PasswordHasher interface {
	// Hash は平文パスワードからソルト付きダイジェストを生成する。
	Hash(plain string) (string, error)
	// Verify は平文パスワードとダイジェストを照合する。
	// 不一致は (false, nil)、ダイジェストの破損などの失敗は (false, err) を返す。
	Verify(plain, digest string) (bool, error)
}

// DefaultBcryptCost はbcryptの既定コスト。
const DefaultBcryptCost = 10

// BcryptHasher はbcryptによるPasswordHasherの実装。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はBcryptHasherを生成する。
// costはbcryptの有効範囲（MinCost..MaxCost）に丸められ、0以下の場合はDefaultBcryptCostとなる。
func NewBcryptHasher(cost int) *BcryptHasher {
	switch {
	case cost <= 0:
		cost = DefaultBcryptCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost は実際に使用するコストを返す。
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash は平文パスワードからbcryptダイジェストを生成する。
// 72バイトを超えるパスワードはbcrypt.ErrPasswordTooLongとなる。
func (h *BcryptHasher) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文パスワードとbcryptダイジェストを照合する。
func (h *BcryptHasher) Verify(plain, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to verify password: %w", err)
}

// compile-time interface check
var _ PasswordHasher = (*BcryptHasher)(nil)
