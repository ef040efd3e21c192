package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

// QRService renders Telegram bind links as scannable QR codes
type QRService struct {
	botUsername string
	logger      *logrus.Logger
}

// NewQRService creates a new QR code service
func NewQRService(botUsername string, logger *logrus.Logger) *QRService {
	return &QRService{
		botUsername: botUsername,
		logger:      logger,
	}
}

// BindLink builds the deep link that opens the bot with the bind code as the
// /start payload
func (s *QRService) BindLink(bindCode string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", s.botUsername, bindCode)
}

// BindQR renders the deep link for a bind code as a PNG
func (s *QRService) BindQR(bindCode string) ([]byte, error) {
	link := s.BindLink(bindCode)
	s.logger.Debugf("Generating QR code for bind link %s", link)

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}
