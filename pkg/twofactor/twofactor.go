package twofactor

import (
	"bytes"
	"encoding/base32"
	"encoding/base64"
	"image/png"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/pquerna/otp/totp"
)

// TwoFactorService 双因素认证服务
type TwoFactorService struct {
	issuer string
}

// NewTwoFactorService 创建2FA服务
func NewTwoFactorService(issuer string) *TwoFactorService {
	return &TwoFactorService{
		issuer: issuer,
	}
}

// GenerateSecret 生成2FA密钥
func (s *TwoFactorService) GenerateSecret(email string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: email,
		// 使用默认设置：30秒周期，6位数字，SHA1算法
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// GenerateQRCode 生成二维码数据URL（扫码录入认证器App）
func (s *TwoFactorService) GenerateQRCode(email, secret string) (string, error) {
	secretBytes, err := base32.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", err
	}

	// 使用已生成的密钥创建TOTP对象
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: email,
		Secret:      secretBytes,
	})
	if err != nil {
		return "", err
	}

	qrCode, err := qr.Encode(key.URL(), qr.M, qr.Auto)
	if err != nil {
		return "", err
	}

	// 缩放二维码以提高清晰度
	qrCode, err = barcode.Scale(qrCode, 200, 200)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return "", err
	}

	base64Str := base64.StdEncoding.EncodeToString(buf.Bytes())
	return "data:image/png;base64," + base64Str, nil
}

// ValidateCode 验证TOTP代码
func (s *TwoFactorService) ValidateCode(secret, code string) bool {
	// 标准验证，与Google Authenticator等应用完全兼容
	return totp.Validate(code, secret)
}

// GenerateCurrentCode 生成当前时间的TOTP代码（用于调试）
func (s *TwoFactorService) GenerateCurrentCode(secret string) (string, error) {
	return totp.GenerateCode(secret, time.Now())
}
