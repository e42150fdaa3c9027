package service

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/station-rewards/internal/constants"
)

// couponCodeAlphabet 去掉易混淆字符 0/O/1/I 后的 32 个符号
const couponCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeGenerator 券码生成器
type CodeGenerator interface {
	Generate() (string, error)
}

// RandomCodeGenerator 基于 crypto/rand 的券码生成器
type RandomCodeGenerator struct {
	length int
}

// NewRandomCodeGenerator 创建券码生成器，长度至少为 8
func NewRandomCodeGenerator(length int) *RandomCodeGenerator {
	if length < 8 {
		length = 10
	}
	return &RandomCodeGenerator{length: length}
}

// Generate 生成一个券码
func (g *RandomCodeGenerator) Generate() (string, error) {
	base := big.NewInt(int64(len(couponCodeAlphabet)))
	var b strings.Builder
	b.Grow(g.length)
	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		b.WriteByte(couponCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeCouponCode 券码去空白并转大写
func NormalizeCouponCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ParseScannedCode 解析扫码内容，组合载荷取首段作为券码
func ParseScannedCode(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, constants.QRPayloadSeparator); idx >= 0 {
		raw = raw[:idx]
	}
	return NormalizeCouponCode(raw)
}

// BuildQRPayload 生成 code|name|contact 组合载荷，分隔符从姓名与联系方式中剔除
func BuildQRPayload(code, name, contact string) string {
	clean := func(s string) string {
		return strings.TrimSpace(strings.ReplaceAll(s, constants.QRPayloadSeparator, " "))
	}
	return strings.Join([]string{NormalizeCouponCode(code), clean(name), clean(contact)}, constants.QRPayloadSeparator)
}
