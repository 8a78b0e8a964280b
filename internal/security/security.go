// Package security 提供接口访问密钥校验
package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/logger"
)

// KeySet 允许访问的API密钥集合，只保存摘要
type KeySet struct {
	digests [][sha256.Size]byte
}

// NewKeySet 创建密钥集合，忽略空白项
func NewKeySet(keys []string) *KeySet {
	ks := &KeySet{}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		ks.digests = append(ks.digests, sha256.Sum256([]byte(k)))
	}
	return ks
}

// Len 密钥数量
func (ks *KeySet) Len() int {
	if ks == nil {
		return 0
	}
	return len(ks.digests)
}

// Allow 检查密钥是否在集合中
func (ks *KeySet) Allow(key string) bool {
	if key == "" || ks.Len() == 0 {
		return false
	}
	d := sha256.Sum256([]byte(key))
	ok := 0
	// 逐个比较，耗时与命中位置无关
	for i := range ks.digests {
		ok |= subtle.ConstantTimeCompare(d[:], ks.digests[i][:])
	}
	return ok == 1
}

// ExtractAPIKey 从请求中提取API密钥
func ExtractAPIKey(r *http.Request) string {
	// 1. 从 Authorization header
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	// 2. 从 X-API-Key header
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}

	// 3. 从 query parameter
	return r.URL.Query().Get("api_key")
}

// RequireAPIKey 密钥校验中间件
func RequireAPIKey(keys *KeySet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ExtractAPIKey(r)
			if !keys.Allow(key) {
				logger.WithContext(r.Context()).Warn().
					Str("path", r.URL.Path).
					Bool("key_present", key != "").
					Msg("API密钥校验失败")
				appErr := apperrors.New(apperrors.CodeUnauthorized, "缺少或无效的API密钥")
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", "Bearer")
				w.WriteHeader(appErr.HTTPStatus)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error":   true,
					"code":    appErr.Code,
					"message": appErr.Message,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
