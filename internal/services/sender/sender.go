// Package services содержит воркер почтовой рассылки отчётов:
// разбирает задание из очереди, отрисовывает PDF и отправляет письмо
// с вложением через SMTP.
package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

// PDFGenerator отрисовывает PDF по заданию на отчёт.
type PDFGenerator interface {
	Generate(job models.ReportJob) ([]byte, error)
}

// SenderService отправляет месячные отчёты по почте.
type SenderService struct {
	transport smtp.TransportInterface
	generator PDFGenerator
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, generator PDFGenerator, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		generator: generator,
		log:       log,
	}
}

// SendMonthlyReport обрабатывает одно задание из очереди: ошибка вернёт
// сообщение в очередь на повторную доставку.
func (s *SenderService) SendMonthlyReport(body []byte) error {
	var job models.ReportJob
	if err := json.Unmarshal(body, &job); err != nil {
		s.log.Error("failed to unmarshal report job", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	pdfData, err := s.generator.Generate(job)
	if err != nil {
		s.log.Error("failed to generate pdf report", sl.Err(err))
		return fmt.Errorf("error generating report: %w", err)
	}

	subject := fmt.Sprintf("Monthly financial report %d-%02d", job.Year, job.Month)
	bodyText := fmt.Sprintf("Hello, %s!\n\nYour financial report for %d-%02d is attached.\n", job.FirstName, job.Year, job.Month)
	filename := fmt.Sprintf("financial-report-%d-%02d.pdf", job.Year, job.Month)

	return s.sendEmailWithAttachment([]string{job.Email}, subject, bodyText, filename, pdfData)
}

// sendEmailWithAttachment собирает multipart-письмо с PDF-вложением
// и отправляет его через SMTP транспорт.
func (s *SenderService) sendEmailWithAttachment(to []string, subject, bodyText, filename string, attachment []byte) error {
	const boundary = "report-boundary-7MA4YWxkTrZu0gW"

	var msg strings.Builder
	headers := []string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: multipart/mixed; boundary=\"" + boundary + "\"",
		"",
		"--" + boundary,
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
		"",
		"--" + boundary,
		"Content-Type: application/pdf; name=\"" + filename + "\"",
		"Content-Transfer-Encoding: base64",
		"Content-Disposition: attachment; filename=\"" + filename + "\"",
		"",
	}
	msg.WriteString(strings.Join(headers, "\r\n"))
	msg.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString(attachment)
	// Строки base64 не длиннее 76 символов
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		msg.WriteString(encoded[i:end])
		msg.WriteString("\r\n")
	}
	msg.WriteString("--" + boundary + "--\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg.String())); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("report email sent successfully", "to", to)
	return nil
}
