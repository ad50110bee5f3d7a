// Package services содержит отправку писем по сообщениям из очереди:
// о начислении кредитов и о приглашении в команду.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/lib/smtp"
	"github.com/magabrotheeeer/adpilot/internal/models"
)

type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
	inviteURL string
}

// NewSenderService создает новый экземпляр SenderService.
// inviteURL — адрес страницы принятия приглашения, токен добавляется параметром.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface, inviteURL string) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
		inviteURL: inviteURL,
	}
}

// SendCreditsGranted отправляет письмо о начислении кредитов.
func (s *SenderService) SendCreditsGranted(body []byte) error {
	var message models.CreditsGrantedInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("Failed to unmarshal message body", "error", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Кредиты зачислены на ваш счёт"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nНа ваш счёт зачислено %d кредитов.\n\nСпасибо, что пользуетесь сервисом.",
		message.Username, message.Credits)

	return s.sendEmail(to, subject, bodyText)
}

// SendTeamInvitation отправляет письмо-приглашение в команду.
func (s *SenderService) SendTeamInvitation(body []byte) error {
	var message models.InvitationInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("Failed to unmarshal message body", "error", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Приглашение в команду"
	bodyText := fmt.Sprintf(`Здравствуйте!
			%s приглашает вас в свою команду.
			Чтобы принять приглашение, перейдите по ссылке: %s?token=%s
			Приглашение действует до %s.
		`, message.OwnerName, s.inviteURL, message.Token, message.ExpiresAt.Format("02.01.2006"))

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("Failed to connect to SMTP server", "error", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("Failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("Failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", "error", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("Failed to write email body", "error", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", "error", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", "error", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
