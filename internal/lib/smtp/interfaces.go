// Package smtp предоставляет SMTP-транспорт для рассылки месячных отчётов.
package smtp

import "io"

// Client — минимальный протокол SMTP-сессии, достаточный для отправки
// письма с вложенным отчётом. Подменяется заглушкой в тестах воркера.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает SMTP-сессию для очередного отчёта.
// GetSMTPUser возвращает адрес отправителя писем с отчётами.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
