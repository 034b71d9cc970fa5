package powerpay

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// SignField 签名字段名，参与签名的字段集合必须排除该字段本身
const SignField = "signData"

// BuildSignContent 构造签名原文：剔除空值与 signData 字段后，
// 按字段名字节序升序拼接 k=v，以 & 连接
func BuildSignContent(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		if k == SignField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, params[k]))
	}
	return strings.Join(pairs, "&")
}

// Sign 计算签名：签名原文追加 &key=<密钥> 后取 MD5，大写十六进制输出
func Sign(params map[string]string, key string) string {
	content := BuildSignContent(params) + "&key=" + key
	sum := md5.Sum([]byte(content))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Verify 重新计算签名并与提供值做恒定时间逐字节比较
func Verify(params map[string]string, provided, key string) bool {
	if provided == "" {
		return false
	}
	expected := Sign(params, key)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
