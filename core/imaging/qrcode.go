package imaging

import (
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"

	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
	"github.com/FocuswithJustin/DevToolkit/internal/validation"
)

// DefaultQRSize is the QR code edge length in pixels used when none is given.
const DefaultQRSize = 256

// Error variables for QR code generation
var (
	// ErrEmptyContent is returned when content string is empty or only whitespace
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrFailedToGenerateQRCode is returned when the QR code generation fails.
	ErrFailedToGenerateQRCode = errors.New("failed to generate QR code")
)

// QRCodePNG renders content as a size x size PNG QR code with medium error
// correction. A size <= 0 selects DefaultQRSize.
func QRCodePNG(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	return png, nil
}

// QRCode writes content as a PNG QR code to out.
func QRCode(content string, size int, out string) error {
	png, err := QRCodePNG(content, size)
	if err != nil {
		return err
	}
	if err := validation.WriteFile(out, png); err != nil {
		return tkerrors.NewIO("write", out, err)
	}
	return nil
}
